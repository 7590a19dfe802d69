package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/catalystqa/e2eagent/internal/domain"
)

func fabricQuestion() domain.ClarificationQuestion {
	return domain.ClarificationQuestion{
		Type:    domain.ClarificationFabricSelection,
		Message: "Which fabric do you want to use for this workflow?",
		Options: []domain.ClarificationOption{
			{Value: "existing_fab-1", Label: "Use existing fabric Campus-A"},
			{Value: "create_new", Label: "Create a new fabric"},
		},
	}
}

func TestSelectOptionByNumber(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("2\n"), &out)

	choice, skipped, err := p.SelectOption(fabricQuestion())
	if err != nil {
		t.Fatalf("SelectOption returned error: %v", err)
	}
	if skipped {
		t.Fatal("expected a choice, got skipped")
	}
	if choice != "create_new" {
		t.Fatalf("choice = %q, want create_new", choice)
	}
	if !strings.Contains(out.String(), "Use existing fabric Campus-A") {
		t.Fatalf("prompt output missing option label:\n%s", out.String())
	}
}

func TestSelectOptionEmptyLineSkips(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n"), &bytes.Buffer{})

	choice, skipped, err := p.SelectOption(fabricQuestion())
	if err != nil {
		t.Fatalf("SelectOption returned error: %v", err)
	}
	if !skipped {
		t.Fatal("expected skipped")
	}
	if choice != "" {
		t.Fatalf("choice = %q, want empty", choice)
	}
}

func TestSelectOptionSkipWord(t *testing.T) {
	p := NewPrompter(strings.NewReader("skip\n"), &bytes.Buffer{})

	_, skipped, err := p.SelectOption(fabricQuestion())
	if err != nil {
		t.Fatalf("SelectOption returned error: %v", err)
	}
	if !skipped {
		t.Fatal("expected skipped")
	}
}

func TestSelectOptionRejectsOutOfRange(t *testing.T) {
	p := NewPrompter(strings.NewReader("7\n"), &bytes.Buffer{})

	_, _, err := p.SelectOption(fabricQuestion())
	if err == nil {
		t.Fatal("expected an error for an out-of-range selection")
	}
}

func TestSelectOptionRejectsGarbage(t *testing.T) {
	p := NewPrompter(strings.NewReader("banana\n"), &bytes.Buffer{})

	_, _, err := p.SelectOption(fabricQuestion())
	if err == nil {
		t.Fatal("expected an error for a non-numeric selection")
	}
}
