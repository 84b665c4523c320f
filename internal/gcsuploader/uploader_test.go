package gcsuploader

import "testing"

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "simple path",
			uri:        "gs://my-bucket/docs/lease.pdf",
			wantBucket: "my-bucket",
			wantObject: "docs/lease.pdf",
		},
		{
			name:       "nested path",
			uri:        "gs://b/a/b/c/statement.pdf",
			wantBucket: "b",
			wantObject: "a/b/c/statement.pdf",
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/docs/lease.pdf",
			wantErr: true,
		},
		{
			name:    "bucket only",
			uri:     "gs://my-bucket",
			wantErr: true,
		},
		{
			name:    "empty object",
			uri:     "gs://my-bucket/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := splitGCSURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got bucket=%q object=%q", tt.uri, bucket, object)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestFilenameFromGCSURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/file.pdf", "file.pdf"},
		{"gs://bucket/file.pdf", "file.pdf"},
		{"gs://bucket/a/b/c/receipt.png", "receipt.png"},
		{"gs://bucket", "bucket"},
	}

	for _, tt := range tests {
		if got := FilenameFromGCSURI(tt.uri); got != tt.want {
			t.Errorf("FilenameFromGCSURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
