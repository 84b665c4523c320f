package simplefin

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeSetupToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid padded token",
			token: base64.StdEncoding.EncodeToString([]byte("https://bridge.example/claim/abc")),
			want:  "https://bridge.example/claim/abc",
		},
		{
			name:  "valid unpadded token",
			token: base64.RawStdEncoding.EncodeToString([]byte("https://bridge.example/claim/xyz")),
			want:  "https://bridge.example/claim/xyz",
		},
		{
			name:  "surrounding whitespace",
			token: "  " + base64.StdEncoding.EncodeToString([]byte("https://bridge.example/claim/abc")) + "\n",
			want:  "https://bridge.example/claim/abc",
		},
		{
			name:    "not base64",
			token:   "not-base64!!",
			wantErr: true,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: true,
		},
		{
			name:    "decodes to non-URL",
			token:   base64.StdEncoding.EncodeToString([]byte("hello world")),
			wantErr: true,
		},
		{
			name:    "decodes to relative URL",
			token:   base64.StdEncoding.EncodeToString([]byte("/claim/abc")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSetupToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSetupToken) {
					t.Fatalf("DecodeSetupToken() error = %v, want ErrInvalidSetupToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSetupToken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeSetupToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClaimAccessURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("claim used method %s, want POST", r.Method)
		}
		w.Write([]byte("https://u:p@sfin.example/access\n"))
	}))
	defer srv.Close()

	token := base64.StdEncoding.EncodeToString([]byte(srv.URL + "/claim/abc"))

	c := NewClient()
	got, err := c.ClaimAccessURL(context.Background(), token)
	if err != nil {
		t.Fatalf("ClaimAccessURL() error = %v", err)
	}
	if got != "https://u:p@sfin.example/access" {
		t.Errorf("ClaimAccessURL() = %q, want trimmed access URL", got)
	}
}

func TestClaimAccessURLUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token already claimed", http.StatusForbidden)
	}))
	defer srv.Close()

	token := base64.StdEncoding.EncodeToString([]byte(srv.URL + "/claim/abc"))

	c := NewClient()
	_, err := c.ClaimAccessURL(context.Background(), token)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("ClaimAccessURL() error = %v, want *UpstreamError", err)
	}
	if ue.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", ue.StatusCode)
	}
	if ue.Body != "token already claimed" {
		t.Errorf("Body = %q, want upstream body preserved", ue.Body)
	}
}

func TestParseAccessURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantBase string
		wantUser string
		wantPass string
		wantErr  bool
	}{
		{
			name:     "credentials and path",
			raw:      "https://u:p@sfin.example/access",
			wantBase: "https://sfin.example/access",
			wantUser: "u",
			wantPass: "p",
		},
		{
			name:     "trailing slash stripped",
			raw:      "https://u:p@sfin.example/access/",
			wantBase: "https://sfin.example/access",
			wantUser: "u",
			wantPass: "p",
		},
		{
			name:     "no credentials",
			raw:      "https://sfin.example/access",
			wantBase: "https://sfin.example/access",
		},
		{
			name:    "not absolute",
			raw:     "sfin.example/access",
			wantErr: true,
		},
		{
			name:    "garbage",
			raw:     "://not a url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccessURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccessURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.BaseURL != tt.wantBase || got.Username != tt.wantUser || got.Password != tt.wantPass {
				t.Errorf("ParseAccessURL() = %+v, want base %q user %q pass %q",
					got, tt.wantBase, tt.wantUser, tt.wantPass)
			}
		})
	}
}

func TestFetchAccounts(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{
			"accounts": [{
				"id": "act-1",
				"name": "Everyday Checking",
				"org": {"name": "Demo Bank"},
				"currency": "USD",
				"balance": "1204.55",
				"balance-date": 1700000000,
				"transactions": [
					{"id": "txn-1", "posted": 1699990000, "amount": "-42.18", "description": "GROCERY MART", "pending": false}
				]
			}]
		}`))
	}))
	defer srv.Close()

	access := Access{BaseURL: srv.URL, Username: "u", Password: "p"}

	c := NewClient()
	set, err := c.FetchAccounts(context.Background(), access, FetchOptions{StartDate: 1699900000, AccountID: "act-1"})
	if err != nil {
		t.Fatalf("FetchAccounts() error = %v", err)
	}

	if gotAuth == "" {
		t.Error("request carried no Authorization header")
	}
	if gotQuery != "account=act-1&start-date=1699900000" {
		t.Errorf("query = %q, want start-date and account params", gotQuery)
	}

	if len(set.Accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(set.Accounts))
	}
	acct := set.Accounts[0]
	if acct.Balance.String() != "1204.55" {
		t.Errorf("Balance = %s, want 1204.55", acct.Balance)
	}
	if acct.Org.Name != "Demo Bank" {
		t.Errorf("Org.Name = %q, want Demo Bank", acct.Org.Name)
	}
	if len(acct.Transactions) != 1 || acct.Transactions[0].Amount.String() != "-42.18" {
		t.Errorf("transactions not decoded: %+v", acct.Transactions)
	}
}

func TestFetchAccountsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.FetchAccounts(context.Background(), Access{BaseURL: srv.URL}, FetchOptions{})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("FetchAccounts() error = %v, want *UpstreamError", err)
	}
	if ue.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", ue.StatusCode)
	}
}
