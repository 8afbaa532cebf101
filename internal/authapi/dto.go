package authapi

// MobileInitRequest starts a mobile signup and triggers an OTP.
type MobileInitRequest struct {
	Name         string `json:"name"`
	Mobile       string `json:"mobile"`
	ReferralCode string `json:"referralCode"`
}

// MobileInitResponse carries the pending user id on success.
type MobileInitResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// EmailSignupRequest registers with email and password.
type EmailSignupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

// EmailSignupResponse returns a token directly, or a user id when the
// address must be confirmed with an OTP first.
type EmailSignupResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// VerifyOTPRequest confirms a signup code.
type VerifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
	Type   string `json:"type"`
}

// VerifyOTPResponse carries the bearer token issued on verification.
type VerifyOTPResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// ResendOTPRequest asks for a fresh signup code.
type ResendOTPRequest struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// PINSetupRequest stores the user's PIN.
type PINSetupRequest struct {
	PIN string `json:"pin"`
}

// Document is one KYC file to upload.
type Document struct {
	Type     string
	FileName string
	Content  []byte
}

// UploadResponse describes an uploaded KYC document.
type UploadResponse struct {
	DocumentURL  string `json:"documentUrl"`
	URL          string `json:"url"`
	DocumentType string `json:"documentType"`
	Message      string `json:"message"`
}

// RemoteURL returns the stored document location, preferring documentUrl.
func (r UploadResponse) RemoteURL() string {
	if r.DocumentURL != "" {
		return r.DocumentURL
	}
	return r.URL
}

// KYCStatus is the current review state.
type KYCStatus struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
	Message         string `json:"message"`
}

// KYCMetadata is the free-form identity numbers captured with the documents.
type KYCMetadata struct {
	AadhaarNumber string `json:"aadhaarNumber"`
	PANNumber     string `json:"panNumber"`
}

// KYCSubmission finalises KYC with the uploaded document URLs.
type KYCSubmission struct {
	AadhaarFrontURL string      `json:"aadhaarFrontUrl"`
	AadhaarBackURL  string      `json:"aadhaarBackUrl"`
	PANURL          string      `json:"panUrl"`
	SelfieURL       string      `json:"selfieUrl"`
	Metadata        KYCMetadata `json:"metadata"`
}
