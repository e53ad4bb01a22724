package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-crm-connector/internal/utils"
)

const (
	ContactsPath = "/contacts/v1/lists/all/contacts/all"
	EmailsPath   = "/marketing-emails/v1/emails"
)

// Contact is the reduced contact record served to the browser. Properties
// absent upstream are empty strings.
type Contact struct {
	Vid       int64  `json:"vid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Name      string `json:"name"`
}

type contactList struct {
	Contacts []contactRecord `json:"contacts"`
}

type contactRecord struct {
	Vid        int64                     `json:"vid"`
	Properties map[string]*propertyValue `json:"properties"`
}

type propertyValue struct {
	Value *string `json:"value"`
}

func (c contactRecord) property(name string) string {
	p := c.Properties[name]
	if p == nil {
		return ""
	}
	return utils.Value(p.Value)
}

func (c contactRecord) toContact() Contact {
	contact := Contact{
		Vid:       c.Vid,
		FirstName: c.property("firstname"),
		LastName:  c.property("lastname"),
		Company:   c.property("company"),
	}
	parts := make([]string, 0, 2)
	for _, part := range []string{contact.FirstName, contact.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	contact.Name = strings.Join(parts, " ")
	return contact
}

// GetContacts returns the first page of the session's contacts.
func (g *Gateway) GetContacts(ctx context.Context, sessionID string) ([]Contact, error) {
	body, err := g.Call(ctx, sessionID, ContactsPath)
	if err != nil {
		return nil, err
	}

	var list contactList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("[Gateway GetContacts] failed to decode contacts: %w", err)
	}

	contacts := make([]Contact, 0, len(list.Contacts))
	for _, record := range list.Contacts {
		contacts = append(contacts, record.toContact())
	}
	return contacts, nil
}

// GetEmails returns the marketing emails payload verbatim.
func (g *Gateway) GetEmails(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return g.Call(ctx, sessionID, EmailsPath)
}
