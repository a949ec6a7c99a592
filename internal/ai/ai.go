// Package ai answers laptop questions with a chat model grounded on the
// normalized specs and marketplace snapshots.
package ai

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant produces the next answer given a system prompt, prior turns and the new question.
type Assistant interface {
	Chat(ctx context.Context, system string, history []Message, question string) (string, error)
}

// Noop answers without a model. Useful when no API key is configured.
type Noop struct{}

func (Noop) Chat(ctx context.Context, system string, history []Message, question string) (string, error) {
	return "No language model is configured; set GOOGLE_API_KEY to enable answers.", nil
}

// Laptops are the only models the assistant will discuss.
var Laptops = []string{
	"Lenovo ThinkPad E14 Gen5 Intel",
	"Lenovo ThinkPad E14 Gen5 AMD",
	"HP ProBook 450 15.6 inch G10 Notebook PC",
	"HP ProBook 440 14 inch G11 Notebook PC",
}

// Greeting is returned for an empty question without calling the model.
const Greeting = "Hello! How can I help you with the 4 laptops?"

// Source is one named data blob embedded in the system prompt.
type Source struct {
	Name string
	Data string
}

// SystemPrompt builds the instruction block. Sources appear in the order given.
func SystemPrompt(sources []Source) string {
	var b strings.Builder
	b.WriteString("You are an expert Business Laptop Assistant.\n\n")
	fmt.Fprintf(&b, "Laptop Options (ONLY these %d):\n", len(Laptops))
	for i, l := range Laptops {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	b.WriteString("\nData Sources:\n")
	if len(sources) == 0 {
		b.WriteString("(none available)\n")
	}
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, s.Name, s.Data)
	}
	b.WriteString(`
Instructions:
1. ONLY answer questions about the laptops above.
2. ALWAYS check both the PDF specs and the website data to find information.
3. If a laptop is missing from the website data but present in the PDF specs, use the PDF specs.
4. NEVER invent or assume any specs.
5. Provide structured answers in the following format:
   - **Laptop Name:**
   - **Key Specifications:** (CPU, RAM, Storage, Display, GPU, Battery, etc.)
   - **Current Price:** (from the website data)
   - **Pros:**
   - **Cons:**
   - **Recommendation:**

IMPORTANT:
- If the question is about something outside these laptops, say "out of scope."
- If the user just greets, greet back.
`)
	return b.String()
}
