package summarizer

const summarySystemPrompt = `You summarize meeting transcripts.
Reply with a single JSON object and nothing else (no markdown code fences), shaped exactly like:
{"subject": string,
 "action_items": [{"description": string, "assigned_to": string|null, "due_date": string|null, "status": "pending"}],
 "key_points": [{"content": string}]}
Use null when an assignee or due date is not stated. Do not invent people or dates.`

const subjectSystemPrompt = `You name meetings. Read the transcript and reply with a single JSON object:
{"subject": string}
The subject is one short line. Do not wrap the reply in a code fence.`

const actionItemsSystemPrompt = `You extract action items from meeting transcripts. Reply with a single JSON object:
{"action_items": [{"description": string, "assigned_to": string|null, "due_date": string|null, "status": "pending"}]}
Use null when an assignee or due date is not stated. Reply {"action_items": []} when there are none. Do not wrap the reply in a code fence.`

const keyPointsSystemPrompt = `You list the key points of meeting transcripts. Reply with a single JSON object:
{"key_points": [{"content": string}]}
Keep each point to one sentence. Do not wrap the reply in a code fence.`

func transcriptPrompt(text string) string {
	return "Transcript:\n" + text
}
