package flow

import (
	"context"
	"sync"

	"github.com/nirvista/onboard/internal/authapi"
)

type fakeAPI struct {
	mu sync.Mutex

	mobileInitReqs []authapi.MobileInitRequest
	emailReqs      []authapi.EmailSignupRequest
	verifyReqs     []authapi.VerifyOTPRequest
	resendReqs     []authapi.ResendOTPRequest
	pinReqs        []authapi.PINSetupRequest
	uploads        []authapi.Document
	submissions    []authapi.KYCSubmission
	tokens         []string

	mobileInitResp authapi.MobileInitResponse
	emailResp      authapi.EmailSignupResponse
	verifyResp     authapi.VerifyOTPResponse
	uploadResp     authapi.UploadResponse
	statusResp     authapi.KYCStatus
	err            error
	statusErr      error
	statusCalls    int
	onStatus       func(call int)
}

func (f *fakeAPI) SignupMobileInit(_ context.Context, req authapi.MobileInitRequest) (authapi.MobileInitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mobileInitReqs = append(f.mobileInitReqs, req)
	return f.mobileInitResp, f.err
}

func (f *fakeAPI) SignupEmail(_ context.Context, req authapi.EmailSignupRequest) (authapi.EmailSignupResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailReqs = append(f.emailReqs, req)
	return f.emailResp, f.err
}

func (f *fakeAPI) VerifyOTP(_ context.Context, req authapi.VerifyOTPRequest) (authapi.VerifyOTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyReqs = append(f.verifyReqs, req)
	return f.verifyResp, f.err
}

func (f *fakeAPI) ResendOTP(_ context.Context, req authapi.ResendOTPRequest) (authapi.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendReqs = append(f.resendReqs, req)
	return authapi.MessageResponse{}, f.err
}

func (f *fakeAPI) SetupPIN(_ context.Context, token string, req authapi.PINSetupRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.pinReqs = append(f.pinReqs, req)
	return f.err
}

func (f *fakeAPI) UploadDocument(_ context.Context, token string, doc authapi.Document) (authapi.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.uploads = append(f.uploads, doc)
	return f.uploadResp, f.err
}

func (f *fakeAPI) KYCStatus(_ context.Context, token string) (authapi.KYCStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	resp, err, hook := f.statusResp, f.statusErr, f.onStatus
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return resp, err
}

func (f *fakeAPI) SubmitKYC(_ context.Context, token string, sub authapi.KYCSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.submissions = append(f.submissions, sub)
	return f.err
}
