package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/logging"
)

func uploadedDocs(skip DocumentType) []DocumentState {
	docs := make([]DocumentState, 0, len(RequiredDocuments))
	for _, spec := range RequiredDocuments {
		d := DocumentState{Type: spec.Type, Label: spec.Label}
		if spec.Type != skip {
			d.RemoteURL = "https://cdn.example/" + string(spec.Type)
		}
		docs = append(docs, d)
	}
	return docs
}

func TestCanSubmit(t *testing.T) {
	full := Metadata{AadhaarNumber: "1234 5678 9012", PANNumber: "ABCDE1234F"}
	if !CanSubmit(uploadedDocs(""), full) {
		t.Fatal("expected submit allowed with every document and metadata")
	}
	for _, spec := range RequiredDocuments {
		if CanSubmit(uploadedDocs(spec.Type), full) {
			t.Fatalf("submit allowed without %s", spec.Type)
		}
	}
	for _, meta := range []Metadata{{PANNumber: "X"}, {AadhaarNumber: "1"}, {AadhaarNumber: "  ", PANNumber: "X"}} {
		if CanSubmit(uploadedDocs(""), meta) {
			t.Fatalf("submit allowed with metadata %+v", meta)
		}
	}
}

func TestParseDocumentType(t *testing.T) {
	if d, ok := ParseDocumentType("pan"); !ok || d != DocPAN {
		t.Fatalf("expected pan, got %q", d)
	}
	if _, ok := ParseDocumentType("passport"); ok {
		t.Fatal("unknown type accepted")
	}
	if DocSelfie.Label() != "Selfie / Face" {
		t.Fatalf("unexpected label %q", DocSelfie.Label())
	}
}

func TestKYCUpload(t *testing.T) {
	h := newHarness()
	h.api.uploadResp = authapi.UploadResponse{URL: "https://cdn.example/pan.jpg", DocumentType: "pan"}
	svc := NewKYCService(h.api, h.workspaces, h.notifier, logging.Discard())

	doc, err := svc.Upload(context.Background(), h.sess, "tok", DocPAN, "pan.jpg", []byte("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.RemoteURL != "https://cdn.example/pan.jpg" || doc.Message != "Uploaded (pan)." || doc.Uploading {
		t.Fatalf("unexpected state %+v", doc)
	}
	if got := h.api.uploads[0]; got.Type != "pan" || got.FileName != "pan.jpg" || string(got.Content) != "img" {
		t.Fatalf("unexpected upload %+v", got)
	}
	if !svc.View(h.sess).Documents[2].Uploaded() {
		t.Fatal("view should show pan uploaded")
	}
}

func TestKYCUploadFailureKeepsPreviousURL(t *testing.T) {
	h := newHarness()
	h.api.uploadResp = authapi.UploadResponse{DocumentURL: "https://cdn.example/first"}
	svc := NewKYCService(h.api, h.workspaces, h.notifier, logging.Discard())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, h.sess, "tok", DocSelfie, "a.jpg", []byte("a")); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	h.api.err = &authapi.Error{Status: 413, Message: "File too large"}
	doc, err := svc.Upload(ctx, h.sess, "tok", DocSelfie, "b.jpg", []byte("b"))
	if msg, _ := UserMessage(err); msg != "File too large" {
		t.Fatalf("unexpected error %v", err)
	}
	if doc.RemoteURL != "https://cdn.example/first" || doc.Uploading || doc.Message != "File too large" || doc.FileName != "b.jpg" {
		t.Fatalf("unexpected state %+v", doc)
	}

	h.api.err = &authapi.Error{Status: 500}
	doc, _ = svc.Upload(ctx, h.sess, "tok", DocSelfie, "b.jpg", []byte("b"))
	if doc.Message != "Upload failed" {
		t.Fatalf("expected fallback message, got %q", doc.Message)
	}
}

func TestKYCUploadRequiresContentAndToken(t *testing.T) {
	h := newHarness()
	svc := NewKYCService(h.api, h.workspaces, h.notifier, logging.Discard())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, h.sess, "", DocPAN, "x", []byte("x")); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
	if msg, _ := UserMessage(second2(svc.Upload(ctx, h.sess, "tok", DocPAN, "", nil))); msg != "Choose a file first." {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(h.api.uploads) != 0 {
		t.Fatal("api must not be called")
	}
}

func TestKYCSubmit(t *testing.T) {
	h := newHarness()
	svc := NewKYCService(h.api, h.workspaces, h.notifier, logging.Discard())
	ctx := context.Background()
	meta := Metadata{AadhaarNumber: " 1234 ", PANNumber: "ABCDE1234F "}

	if msg, _ := UserMessage(second(svc.Submit(ctx, h.sess, "tok", meta))); msg != "Please upload all documents before submitting." {
		t.Fatalf("unexpected message %q", msg)
	}

	for _, spec := range RequiredDocuments {
		h.api.uploadResp = authapi.UploadResponse{DocumentURL: "https://cdn.example/" + string(spec.Type)}
		if _, err := svc.Upload(ctx, h.sess, "tok", spec.Type, "f", []byte("x")); err != nil {
			t.Fatalf("upload %s: %v", spec.Type, err)
		}
	}

	if msg, _ := UserMessage(second(svc.Submit(ctx, h.sess, "tok", Metadata{AadhaarNumber: "1"}))); msg != "Enter Aadhaar and PAN numbers before submitting." {
		t.Fatalf("unexpected message %q", msg)
	}

	next, err := svc.Submit(ctx, h.sess, "tok", meta)
	if err != nil || next != StepComplete {
		t.Fatalf("expected complete, got %s err=%v", next, err)
	}
	want := authapi.KYCSubmission{
		AadhaarFrontURL: "https://cdn.example/aadhaar_front",
		AadhaarBackURL:  "https://cdn.example/aadhaar_back",
		PANURL:          "https://cdn.example/pan",
		SelfieURL:       "https://cdn.example/selfie",
		Metadata:        authapi.KYCMetadata{AadhaarNumber: "1234", PANNumber: "ABCDE1234F"},
	}
	if h.api.submissions[0] != want {
		t.Fatalf("unexpected submission %+v", h.api.submissions[0])
	}
	if !svc.View(h.sess).CanSubmit {
		t.Fatal("view should allow submit")
	}
}

func TestKYCSubmitUpstreamFailureKeepsMetadata(t *testing.T) {
	h := newHarness()
	svc := NewKYCService(h.api, h.workspaces, h.notifier, logging.Discard())
	ctx := context.Background()
	for _, spec := range RequiredDocuments {
		h.api.uploadResp = authapi.UploadResponse{DocumentURL: "u"}
		_, _ = svc.Upload(ctx, h.sess, "tok", spec.Type, "f", []byte("x"))
	}
	h.api.err = &authapi.Error{Status: 400}
	meta := Metadata{AadhaarNumber: "1", PANNumber: "2"}

	if msg, _ := UserMessage(second(svc.Submit(ctx, h.sess, "tok", meta))); msg != "KYC submission failed" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got := svc.View(h.sess).Metadata; got != meta {
		t.Fatalf("expected metadata kept, got %+v", got)
	}
}

func second2(_ DocumentState, err error) error { return err }
