package account

import (
	"testing"
	"time"
)

func TestTokenGenerator_MakeVerifyToken(t *testing.T) {
	gen := NewTokenGenerator("secret", 3*24*time.Hour)

	id := "0b9f8e3c-1d1a-4f5e-9c8b-7a6d5e4f3a2b"
	creds := Credentials{LastLogin: time.Now()}
	if err := creds.SetPassword("pwd"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}

	validToken, err := gen.MakeToken(id, creds)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	// generate an expired token
	dayLate := gen.timeout + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := gen.MakeToken(id, creds)
	NowFunc = time.Now // reset
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	loggedInAgain := creds
	loggedInAgain.LastLogin = creds.LastLogin.Add(time.Hour)

	passwordChanged := creds
	_ = passwordChanged.SetPassword("new-pwd")

	tests := []struct {
		name    string
		id      string
		creds   Credentials
		token   string
		wantErr error
	}{
		{name: "no token", id: id, creds: creds, wantErr: ErrInvalidToken},
		{name: "invalid parts len", id: id, creds: creds, token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "invalid base32", id: id, creds: creds, token: "hahaha-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid timestamp", id: id, creds: creds, token: "NRXWY-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid token", id: id, creds: creds, token: "HE4TS-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "other account", id: "other", creds: creds, token: validToken, wantErr: ErrInvalidToken},
		{name: "logged in since", id: id, creds: loggedInAgain, token: validToken, wantErr: ErrInvalidToken},
		{name: "password changed since", id: id, creds: passwordChanged, token: validToken, wantErr: ErrInvalidToken},
		{name: "expired token", id: id, creds: creds, token: expiredToken, wantErr: ErrTokenExpired},
		{name: "valid token", id: id, creds: creds, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := gen.VerifyToken(tt.id, tt.creds, tt.token); err != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	id := "0b9f8e3c-1d1a-4f5e-9c8b-7a6d5e4f3a2b"
	got, err := DecodeUID(EncodeUID(id))
	if err != nil || got != id {
		t.Errorf("DecodeUID(EncodeUID()) = %q, %v; want %q", got, err, id)
	}
	if _, err = DecodeUID("%%%"); err != ErrInvalidUID {
		t.Errorf("DecodeUID() error = %v, want %v", err, ErrInvalidUID)
	}
}
