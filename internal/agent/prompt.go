package agent

import "strings"

const promptHeader = `You are an expert AI Travel Agent specializing in creating personalized travel plans.
You have access to real-time travel information and user memories.
`

const promptFooter = `
If the user asks for specific recommendations (food, spots, guides), use the 'search_travel_info' tool to find "Xiaohongshu" style reviews.
Always reply in the user's preferred language (likely Chinese).
IMPORTANT: Do not output internal thought tags or XML-like thinking process. Just output the final response.`

const noMemoriesMarker = "No previous memories found."

// systemPrompt builds the system instruction with recalled memories or an
// explicit no-memories marker embedded.
func systemPrompt(memories []string) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	if len(memories) == 0 {
		b.WriteString("\n" + noMemoriesMarker + "\n")
	} else {
		b.WriteString("\nRelevant User Memories:\n")
		for _, m := range memories {
			b.WriteString("- " + m + "\n")
		}
	}

	b.WriteString(promptFooter)
	return b.String()
}
