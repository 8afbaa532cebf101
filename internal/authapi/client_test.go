package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
	DocumentType  string
	FileName      string
	FileContent   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	server   *httptest.Server
}

func newFakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Authorization: r.Header.Get("Authorization")}
		if r.Header.Get("Content-Type") == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		} else if r.Method == http.MethodPost {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				rec.DocumentType = r.FormValue("documentType")
				if file, header, err := r.FormFile("document"); err == nil {
					content, _ := io.ReadAll(file)
					file.Close()
					rec.FileName = header.Filename
					rec.FileContent = string(content)
				}
			}
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestMobileInitSendsPayload(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"userId":"abc","message":"otp sent"}`)
	})
	client := New(Options{BaseURL: api.server.URL, Timeout: time.Second})

	resp, err := client.SignupMobileInit(context.Background(), MobileInitRequest{Name: "Jane", Mobile: "+919999999999", ReferralCode: "REF1"})
	require.NoError(t, err)
	require.Equal(t, "abc", resp.UserID)

	rec := api.last(t)
	require.Equal(t, http.MethodPost, rec.Method)
	require.Equal(t, pathMobileInit, rec.Path)
	require.Empty(t, rec.Authorization)
	require.Equal(t, map[string]any{"name": "Jane", "mobile": "+919999999999", "referralCode": "REF1"}, rec.Body)
}

func TestVerifyOTPRejectionCarriesMessage(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"Invalid OTP"}`)
	})
	var outcomes []string
	client := New(Options{BaseURL: api.server.URL, Observe: func(endpoint, outcome string) {
		outcomes = append(outcomes, endpoint+"="+outcome)
	}})

	_, err := client.VerifyOTP(context.Background(), VerifyOTPRequest{UserID: "abc", OTP: "123456", Type: "mobile"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Invalid OTP", Message(err, "fallback"))
	require.False(t, errors.Is(err, ErrTransport))
	require.Equal(t, []string{pathVerifyOTP + "=" + OutcomeRejected}, outcomes)
}

func TestRejectionWithoutMessageUsesFallback(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := New(Options{BaseURL: api.server.URL})

	err := client.SetupPIN(context.Background(), "tok", PINSetupRequest{PIN: "1234"})
	require.Error(t, err)
	require.Equal(t, "Failed to save PIN.", Message(err, "Failed to save PIN."))
}

func TestBearerTokenOnProtectedCalls(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathKYCStatus:
			writeJSON(w, http.StatusOK, `{"status":"rejected","rejectionReason":"blurry PAN"}`)
		default:
			writeJSON(w, http.StatusOK, `{"message":"ok"}`)
		}
	})
	client := New(Options{BaseURL: api.server.URL})
	ctx := context.Background()

	require.NoError(t, client.SetupPIN(ctx, "tok-1", PINSetupRequest{PIN: "4321"}))
	rec := api.last(t)
	require.Equal(t, "Bearer tok-1", rec.Authorization)
	require.Equal(t, map[string]any{"pin": "4321"}, rec.Body)

	status, err := client.KYCStatus(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "rejected", status.Status)
	require.Equal(t, "blurry PAN", status.RejectionReason)
	require.Equal(t, http.MethodGet, api.last(t).Method)

	err = client.SubmitKYC(ctx, "tok-1", KYCSubmission{
		AadhaarFrontURL: "u1", AadhaarBackURL: "u2", PANURL: "u3", SelfieURL: "u4",
		Metadata: KYCMetadata{AadhaarNumber: "1234", PANNumber: "ABCDE1234F"},
	})
	require.NoError(t, err)
	rec = api.last(t)
	require.Equal(t, pathKYCSubmit, rec.Path)
	require.Equal(t, "u3", rec.Body["panUrl"])
	require.Equal(t, map[string]any{"aadhaarNumber": "1234", "panNumber": "ABCDE1234F"}, rec.Body["metadata"])
}

func TestUploadDocumentMultipart(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"url":"https://cdn/doc.png","documentType":"pan"}`)
	})
	client := New(Options{BaseURL: api.server.URL})

	resp, err := client.UploadDocument(context.Background(), "tok", Document{Type: "pan", FileName: "pan.png", Content: []byte("png-bytes")})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/doc.png", resp.RemoteURL())
	require.Equal(t, "pan", resp.DocumentType)

	rec := api.last(t)
	require.Equal(t, pathKYCUpload, rec.Path)
	require.Equal(t, "Bearer tok", rec.Authorization)
	require.Equal(t, "pan", rec.DocumentType)
	require.Equal(t, "pan.png", rec.FileName)
	require.Equal(t, "png-bytes", rec.FileContent)
}

func TestTransportFailures(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})
	client := New(Options{BaseURL: api.server.URL})

	_, err := client.ResendOTP(context.Background(), ResendOTPRequest{UserID: "abc", Type: "mobile"})
	require.ErrorIs(t, err, ErrTransport)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	client = New(Options{BaseURL: closed.URL, Timeout: time.Second})
	_, err = client.KYCStatus(context.Background(), "tok")
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, "fallback", Message(err, "fallback"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{BaseURL: api.server.URL}).KYCStatus(ctx, "tok")
	require.ErrorIs(t, err, ErrTransport)
}
