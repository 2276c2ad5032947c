package pandadoc

import (
	"testing"

	"github.com/benreeder-coder/clienthub/internal/platform/config"
)

func TestVerifySignature(t *testing.T) {
	client := NewClient(config.PandaDocConfig{WebhookSecret: "secret"})

	// Calculated using: echo -n "payload" | openssl dgst -sha256 -hmac "secret"
	validSig := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"

	if !client.VerifySignature([]byte("payload"), validSig) {
		t.Error("Expected valid signature to pass")
	}
	if client.VerifySignature([]byte("payload"), "deadbeef") {
		t.Error("Expected invalid signature to fail")
	}
	if client.VerifySignature([]byte("tampered"), validSig) {
		t.Error("Expected modified payload to fail")
	}
}

func TestVerifySignature_EmptySecretRejects(t *testing.T) {
	client := NewClient(config.PandaDocConfig{})

	if client.VerifySignature([]byte("payload"), "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4") {
		t.Error("Expected unconfigured secret to reject all signatures")
	}
}

func TestParsePayload(t *testing.T) {
	body := []byte(`{
		"event": "document_state_changed",
		"data": {
			"id": "doc-123",
			"name": "Service Agreement",
			"status": "document.completed",
			"recipients": [
				{"email": "client@acme.com", "first_name": "Jane", "last_name": "Doe", "role": "signer", "has_completed": true}
			]
		}
	}`)

	payload, err := ParsePayload(body)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if payload.Event != "document_state_changed" {
		t.Errorf("Event = %s", payload.Event)
	}
	if payload.Data.ID != "doc-123" {
		t.Errorf("Data.ID = %s", payload.Data.ID)
	}
	if len(payload.Data.Recipients) != 1 || !payload.Data.Recipients[0].HasCompleted {
		t.Errorf("Recipients not parsed: %+v", payload.Data.Recipients)
	}
}

func TestParsePayload_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing event", `{"data": {"id": "doc-123"}}`},
		{"missing document id", `{"event": "document_state_changed", "data": {}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePayload([]byte(tc.body)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestIsDocumentCompleted(t *testing.T) {
	completed := &WebhookPayload{Event: "document_state_changed"}
	completed.Data.Status = "document.completed"
	if !IsDocumentCompleted(completed) {
		t.Error("Expected completed state change to match")
	}

	viewed := &WebhookPayload{Event: "document_state_changed"}
	viewed.Data.Status = "document.viewed"
	if IsDocumentCompleted(viewed) {
		t.Error("Expected non-completed status to be ignored")
	}

	otherEvent := &WebhookPayload{Event: "recipient_completed"}
	otherEvent.Data.Status = "document.completed"
	if IsDocumentCompleted(otherEvent) {
		t.Error("Expected non-state-change event to be ignored")
	}
}

func TestExtractPackageInfo(t *testing.T) {
	fields := []Field{
		{Name: "Package", Value: "Professional"},
		{Name: "Company_Name", Value: "Acme Inc"},
		{Name: "client_email", Value: "jane@acme.com"},
	}

	info := ExtractPackageInfo(fields)
	if info.PackageName != "Professional" {
		t.Errorf("PackageName = %s", info.PackageName)
	}
	if info.CompanyName != "Acme Inc" {
		t.Errorf("CompanyName = %s", info.CompanyName)
	}
	if info.ClientEmail != "jane@acme.com" {
		t.Errorf("ClientEmail = %s", info.ClientEmail)
	}
	if info.ClientName != "" {
		t.Errorf("ClientName = %s, want empty", info.ClientName)
	}
}

func TestExtractPackageInfo_FieldVariants(t *testing.T) {
	fields := []Field{
		{Name: "plan", Value: "enterprise"},
		{Name: "organization", Value: "Globex"},
		{Name: "email", Value: "ops@globex.com"},
		{Name: "name", Value: "Hank Scorpio"},
	}

	info := ExtractPackageInfo(fields)
	if info.PackageName != "enterprise" {
		t.Errorf("PackageName = %s", info.PackageName)
	}
	if info.CompanyName != "Globex" {
		t.Errorf("CompanyName = %s", info.CompanyName)
	}
	if info.ClientEmail != "ops@globex.com" {
		t.Errorf("ClientEmail = %s", info.ClientEmail)
	}
	if info.ClientName != "Hank Scorpio" {
		t.Errorf("ClientName = %s", info.ClientName)
	}
}

func TestTemplateForPackage(t *testing.T) {
	cases := []struct {
		pkg  string
		want string
	}{
		{"starter", "standard-client-portal"},
		{"Professional", "standard-client-portal"},
		{" Enterprise ", "full-stack-agency"},
		{"outreach-only", "outreach-only"},
		{"unknown-plan", DefaultTemplateName},
		{"", DefaultTemplateName},
	}
	for _, tc := range cases {
		if got := TemplateForPackage(tc.pkg); got != tc.want {
			t.Errorf("TemplateForPackage(%q) = %s, want %s", tc.pkg, got, tc.want)
		}
	}
}
