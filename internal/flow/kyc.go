package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

// DocumentType identifies a required KYC document.
type DocumentType string

const (
	DocAadhaarFront DocumentType = "aadhaar_front"
	DocAadhaarBack  DocumentType = "aadhaar_back"
	DocPAN          DocumentType = "pan"
	DocSelfie       DocumentType = "selfie"
)

// DocumentSpec pairs a document type with its display label.
type DocumentSpec struct {
	Type  DocumentType
	Label string
}

// RequiredDocuments lists every document KYC needs, in display order.
var RequiredDocuments = []DocumentSpec{
	{Type: DocAadhaarFront, Label: "Aadhaar Front"},
	{Type: DocAadhaarBack, Label: "Aadhaar Back"},
	{Type: DocPAN, Label: "PAN Card"},
	{Type: DocSelfie, Label: "Selfie / Face"},
}

// ParseDocumentType validates a document type from a URL or form.
func ParseDocumentType(v string) (DocumentType, bool) {
	for _, spec := range RequiredDocuments {
		if string(spec.Type) == v {
			return spec.Type, true
		}
	}
	return "", false
}

// Label returns the display label of t.
func (t DocumentType) Label() string {
	for _, spec := range RequiredDocuments {
		if spec.Type == t {
			return spec.Label
		}
	}
	return string(t)
}

// DocumentState tracks one document's upload.
type DocumentState struct {
	Type      DocumentType
	Label     string
	FileName  string
	RemoteURL string
	Uploading bool
	Message   string
}

// Uploaded reports whether the document has a remote URL.
func (d DocumentState) Uploaded() bool { return d.RemoteURL != "" }

// Metadata is the identity numbers captured with the documents.
type Metadata struct {
	AadhaarNumber string
	PANNumber     string
}

// Trimmed returns m with surrounding whitespace removed.
func (m Metadata) Trimmed() Metadata {
	return Metadata{AadhaarNumber: strings.TrimSpace(m.AadhaarNumber), PANNumber: strings.TrimSpace(m.PANNumber)}
}

// Complete reports whether both numbers are present.
func (m Metadata) Complete() bool {
	t := m.Trimmed()
	return t.AadhaarNumber != "" && t.PANNumber != ""
}

// DocumentsReady reports whether every required document has a remote URL.
func DocumentsReady(docs []DocumentState) bool {
	uploaded := make(map[DocumentType]bool, len(docs))
	for _, d := range docs {
		if d.Uploaded() {
			uploaded[d.Type] = true
		}
	}
	for _, spec := range RequiredDocuments {
		if !uploaded[spec.Type] {
			return false
		}
	}
	return true
}

// CanSubmit is the KYC submission invariant: all documents uploaded and
// both metadata fields filled.
func CanSubmit(docs []DocumentState, meta Metadata) bool {
	return DocumentsReady(docs) && meta.Complete()
}

// KYCView is what the KYC screen renders.
type KYCView struct {
	Documents []DocumentState
	Metadata  Metadata
	CanSubmit bool
}

// KYCService handles document upload and KYC submission.
type KYCService struct {
	api        API
	workspaces *Workspaces
	notifier   notification.Notifier
	logger     *slog.Logger
}

// NewKYCService creates the KYC step controller.
func NewKYCService(api API, workspaces *Workspaces, notifier notification.Notifier, logger *slog.Logger) *KYCService {
	return &KYCService{api: api, workspaces: workspaces, notifier: notifier, logger: logger}
}

// View returns the visitor's current KYC state.
func (s *KYCService) View(sess *session.Client) KYCView {
	ws := s.workspaces.Get(sess.ID())
	docs := ws.Documents()
	meta := ws.Metadata()
	return KYCView{Documents: docs, Metadata: meta, CanSubmit: CanSubmit(docs, meta)}
}

// Upload sends one document to the API as soon as it is chosen and records
// the returned URL. A failed upload keeps the URL of the last successful one.
func (s *KYCService) Upload(ctx context.Context, sess *session.Client, token string, docType DocumentType, fileName string, content []byte) (DocumentState, error) {
	if token == "" {
		return DocumentState{}, ErrMissingToken
	}
	ws := s.workspaces.Get(sess.ID())
	if len(content) == 0 {
		ws.updateDocument(docType, func(d *DocumentState) { d.Message = "Choose a file first." })
		return ws.Document(docType), userError("Choose a file first.")
	}

	ws.updateDocument(docType, func(d *DocumentState) {
		d.FileName = fileName
		d.Uploading = true
		d.Message = "Uploading..."
	})

	resp, err := s.api.UploadDocument(ctx, token, authapi.Document{Type: string(docType), FileName: fileName, Content: content})
	if err != nil {
		s.logger.Warn("kyc upload failed", slog.String("session_id", sess.ID()), slog.String("document", string(docType)), slog.Any("error", err))
		msg := authapi.Message(err, "Upload failed")
		doc := ws.updateDocument(docType, func(d *DocumentState) {
			d.Uploading = false
			d.Message = msg
		})
		return doc, userError(msg)
	}

	uploadedAs := resp.DocumentType
	if uploadedAs == "" {
		uploadedAs = string(docType)
	}
	doc := ws.updateDocument(docType, func(d *DocumentState) {
		d.Uploading = false
		d.RemoteURL = resp.RemoteURL()
		d.Message = "Uploaded (" + uploadedAs + ")."
	})
	return doc, nil
}

// Submit posts every document URL and the metadata. The metadata is kept
// in the workspace so a failed submit re-renders with what was typed.
func (s *KYCService) Submit(ctx context.Context, sess *session.Client, token string, meta Metadata) (Step, error) {
	if token == "" {
		return StepSignup, ErrMissingToken
	}
	ws := s.workspaces.Get(sess.ID())
	ws.SetMetadata(meta)

	docs := ws.Documents()
	if !DocumentsReady(docs) {
		return StepKYC, userError("Please upload all documents before submitting.")
	}
	if !meta.Complete() {
		return StepKYC, userError("Enter Aadhaar and PAN numbers before submitting.")
	}

	urls := make(map[DocumentType]string, len(docs))
	for _, d := range docs {
		urls[d.Type] = d.RemoteURL
	}
	trimmed := meta.Trimmed()
	sub := authapi.KYCSubmission{
		AadhaarFrontURL: urls[DocAadhaarFront],
		AadhaarBackURL:  urls[DocAadhaarBack],
		PANURL:          urls[DocPAN],
		SelfieURL:       urls[DocSelfie],
		Metadata:        authapi.KYCMetadata{AadhaarNumber: trimmed.AadhaarNumber, PANNumber: trimmed.PANNumber},
	}
	if err := s.api.SubmitKYC(ctx, token, sub); err != nil {
		s.logger.Warn("kyc submit failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		return StepKYC, upstreamError(err, "KYC submission failed", "Could not submit KYC.")
	}

	notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindKYCSubmitted, notification.LevelSuccess, "KYC submitted. Redirecting to downloads...")
	return StepComplete, nil
}
