package analysis

const systemPrompt = "You are a telemetry analyst. Provide concise feedback " +
	"highlighting potential issues or anomalies."

const userPromptPrefix = "Here is a telemetry snapshot. Summarize notable points and " +
	"suggest next steps if something looks problematic.\n\n"

// userPrompt embeds the canonical snapshot text in a fenced json block.
func userPrompt(snapshotJSON []byte) string {
	return userPromptPrefix + "```json\n" + string(snapshotJSON) + "\n```"
}
