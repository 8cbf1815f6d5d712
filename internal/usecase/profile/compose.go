package profile

import (
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain/client"
)

const (
	tagRepeat   = 3
	maxMessages = 5
)

// Input is everything the composite document is built from.
// Messages are in chronological order.
type Input struct {
	Profile  client.Profile
	Messages []string
}

// Compose builds the composite document: tags repeated three times,
// preferences by sorted key, the last five messages, then notes.
// Returns "" when the profile carries no signal.
func Compose(in Input) string {
	sections := make([]string, 0, 4)

	if tags := nonBlank(in.Profile.Tags()); len(tags) > 0 {
		line := strings.Join(tags, ", ")
		repeated := make([]string, tagRepeat)
		for i := range repeated {
			repeated[i] = line
		}
		sections = append(sections, "Tags: "+strings.Join(repeated, "; "))
	}

	prefs := in.Profile.Preferences()
	var lines []string
	for _, k := range prefs.Keys() {
		v, _ := prefs.Get(k)
		if text := strings.TrimSpace(v.Text()); text != "" {
			lines = append(lines, k+": "+text)
		}
	}
	if len(lines) > 0 {
		sections = append(sections, "Preferences:\n"+strings.Join(lines, "\n"))
	}

	msgs := nonBlank(in.Messages)
	if len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	if len(msgs) > 0 {
		sections = append(sections, "Conversation:\n"+strings.Join(msgs, "\n"))
	}

	if notes := strings.TrimSpace(in.Profile.Notes()); notes != "" {
		sections = append(sections, "Notes: "+notes)
	}

	return strings.Join(sections, "\n")
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
