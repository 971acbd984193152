package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/moneybook/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const assistModel = "gemini-2.5-pro"

const assistInstruction = `You are a careful personal finance assistant.
You receive the user's account list and balance check report in markdown.
Explain the state of their finances in plain language: call out accounts
whose stored balance drifted from their transaction history, unusual
balances, and anything worth a second look. Be concise and concrete, and
never invent numbers that are not in the report.`

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "explain the balance report with Gemini" }
func (*assistCmd) Usage() string {
	return `mbk assist [question...]

  Sends the account and balance reports to Gemini and prints its
  explanation, optionally focused on a question. Requires GEMINI_API_KEY.
`
}

func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	report := renderer.Accounts(s) + "\n" + renderer.Balances(s)
	question := "Explain this report."
	if f.NArg() > 0 {
		question = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return errorf("cannot initialize Gemini client: %v", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: assistInstruction}}},
	}
	chat, err := client.Chats.Create(ctx, assistModel, config, nil)
	if err != nil {
		return errorf("cannot start Gemini chat: %v", err)
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: report + "\n\n" + question})
	if err != nil {
		return errorf("Gemini request failed: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return errorf("empty response from Gemini")
	}
	printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
	return subcommands.ExitSuccess
}
