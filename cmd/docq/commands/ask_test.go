package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestAsk_EmptyInteractiveQuestionPrintsNotice(t *testing.T) {
	for name, input := range map[string]string{
		"blank line":  "\n",
		"whitespace":  "   \n",
		"eof no line": "",
	} {
		t.Run(name, func(t *testing.T) {
			cmd := NewAskCmd()
			cmd.SetIn(strings.NewReader(input))
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{})

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.Contains(out.String(), "empty query") {
				t.Errorf("output %q does not tell the user the query was empty", out.String())
			}
		})
	}
}

func TestIngestCmd_ChunksOutFlag(t *testing.T) {
	t.Parallel()
	f := NewIngestCmd().Flags().Lookup("chunks-out")
	if f == nil {
		t.Fatal("ingest command has no chunks-out flag")
	}
	if f.DefValue != "" {
		t.Errorf("chunks-out default = %q, want no file by default", f.DefValue)
	}
}
