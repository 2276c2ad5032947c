package pandadoc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benreeder-coder/clienthub/internal/platform/config"
)

const defaultBaseURL = "https://api.pandadoc.com/public/v1"

type Document struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Status        string      `json:"status"`
	DateCompleted string      `json:"date_completed,omitempty"`
	Recipients    []Recipient `json:"recipients,omitempty"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type Recipient struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Role         string `json:"role"`
	HasCompleted bool   `json:"has_completed"`
}

type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID         string      `json:"id"`
		Name       string      `json:"name"`
		Status     string      `json:"status"`
		Recipients []Recipient `json:"recipients,omitempty"`
	} `json:"data"`
}

// PackageInfo is what the provisioning flow extracts from a signed
// contract's form fields.
type PackageInfo struct {
	PackageName string
	TierLevel   string
	CompanyName string
	ClientEmail string
	ClientName  string
}

// DocumentAPI is the outbound surface the provisioning service depends
// on; the HTTP client implements it and tests stub it.
type DocumentAPI interface {
	GetDocument(documentID string) (*Document, error)
	GetDocumentFields(documentID string) ([]Field, error)
}

type Client struct {
	apiKey        string
	webhookSecret string
	baseURL       string
	http          *http.Client
}

func NewClient(cfg config.PandaDocConfig) *Client {
	return &Client{
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       defaultBaseURL,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifySignature checks the HMAC-SHA256 hex signature over the raw body.
// Constant-time compare; an unconfigured secret rejects everything.
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	if c.webhookSecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(c.webhookSecret))
	h.Write(payload)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func ParsePayload(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Event == "" || payload.Data.ID == "" {
		return nil, fmt.Errorf("malformed webhook payload")
	}
	return &payload, nil
}

// IsDocumentCompleted reports whether the payload is a full-completion
// state change (signed by all parties).
func IsDocumentCompleted(payload *WebhookPayload) bool {
	return payload.Event == "document_state_changed" && payload.Data.Status == "document.completed"
}

func (c *Client) GetDocument(documentID string) (*Document, error) {
	var doc Document
	if err := c.get("/documents/"+documentID+"/details", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) GetDocumentFields(documentID string) ([]Field, error) {
	var resp struct {
		Fields []Field `json:"fields"`
	}
	if err := c.get("/documents/"+documentID+"/fields", &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

func (c *Client) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "API-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pandadoc api %s: %d: %s", path, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ExtractPackageInfo pulls provisioning fields out of the document form
// data, tolerating the field-name variants seen in real templates.
func ExtractPackageInfo(fields []Field) PackageInfo {
	byName := make(map[string]string, len(fields))
	for _, f := range fields {
		byName[strings.ToLower(f.Name)] = f.Value
	}
	first := func(names ...string) string {
		for _, name := range names {
			if v := byName[name]; v != "" {
				return v
			}
		}
		return ""
	}

	return PackageInfo{
		PackageName: first("package", "package_name", "plan", "tier"),
		TierLevel:   first("tier_level", "tier", "level"),
		CompanyName: first("company_name", "company", "organization"),
		ClientEmail: first("client_email", "email"),
		ClientName:  first("client_name", "name"),
	}
}

// DefaultTemplateName is the fallback when a package has no mapping.
const DefaultTemplateName = "standard-client-portal"

var packageToTemplate = map[string]string{
	"starter":       "standard-client-portal",
	"standard":      "standard-client-portal",
	"professional":  "standard-client-portal",
	"outreach":      "outreach-only",
	"outreach-only": "outreach-only",
	"enterprise":    "full-stack-agency",
	"full-stack":    "full-stack-agency",
}

// TemplateForPackage maps a contract package name to a workspace template
// name.
func TemplateForPackage(packageName string) string {
	normalized := strings.ToLower(strings.TrimSpace(packageName))
	if template, ok := packageToTemplate[normalized]; ok {
		return template
	}
	return DefaultTemplateName
}
