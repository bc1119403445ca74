package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	maxTitleLength = 200
	minPriority    = 1
	maxPriority    = 5
)

// defaultForm carries every field. Public submitters must give an email
// and a description; staff may leave both empty.
type defaultForm struct {
	defaultPriority int
}

func newDefaultForm(defaultPriority int) Form {
	return &defaultForm{defaultPriority: defaultPriority}
}

func (f *defaultForm) Name() string {
	return "default"
}

func (f *defaultForm) Clean(in *Input, staff bool) error {
	if in.QueueID == 0 {
		return fmt.Errorf("queue is required")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("summary of the problem is required")
	}
	if len(in.Title) > maxTitleLength {
		return fmt.Errorf("summary exceeds %d characters", maxTitleLength)
	}
	in.SubmitterEmail = strings.TrimSpace(in.SubmitterEmail)
	if in.SubmitterEmail != "" {
		if err := validate.Var(in.SubmitterEmail, "email"); err != nil {
			return fmt.Errorf("invalid submitter email: %s", in.SubmitterEmail)
		}
	}
	if !staff {
		if in.SubmitterEmail == "" {
			return fmt.Errorf("your e-mail address is required")
		}
		if strings.TrimSpace(in.Body) == "" {
			return fmt.Errorf("description of your issue is required")
		}
		in.AssignedTo = nil
	}
	if in.Priority == 0 {
		in.Priority = f.defaultPriority
	}
	if in.Priority < minPriority || in.Priority > maxPriority {
		return fmt.Errorf("priority must be between %d and %d", minPriority, maxPriority)
	}
	cleaned := in.CCEmails[:0]
	for _, cc := range in.CCEmails {
		cc = strings.TrimSpace(cc)
		if cc == "" {
			continue
		}
		if err := validate.Var(cc, "email"); err != nil {
			return fmt.Errorf("invalid CC address: %s", cc)
		}
		cleaned = append(cleaned, cc)
	}
	in.CCEmails = cleaned
	return nil
}

// minimalForm only keeps queue, title, body and email.
type minimalForm struct {
	defaultForm
}

func newMinimalForm(defaultPriority int) Form {
	return &minimalForm{defaultForm{defaultPriority: defaultPriority}}
}

func (f *minimalForm) Name() string {
	return "minimal"
}

func (f *minimalForm) Clean(in *Input, staff bool) error {
	in.Priority = f.defaultPriority
	in.DueDate = nil
	in.AssignedTo = nil
	in.KBItemID = nil
	in.CCEmails = nil
	return f.defaultForm.Clean(in, staff)
}

// kbForm requires the knowledge base item the ticket is about.
type kbForm struct {
	defaultForm
}

func newKBForm(defaultPriority int) Form {
	return &kbForm{defaultForm{defaultPriority: defaultPriority}}
}

func (f *kbForm) Name() string {
	return "kb"
}

func (f *kbForm) Clean(in *Input, staff bool) error {
	if in.KBItemID == nil || *in.KBItemID == 0 {
		return fmt.Errorf("knowledge base item is required")
	}
	return f.defaultForm.Clean(in, staff)
}
