package constant

const (
	TranscribePromptV1 = "Transcribe the following medical clinical audio session verbatim. Return only the transcript text, no markdown formatting or intro/outro text."

	// DraftDocumentPromptV1 args: practice info, patient info, context, transcript, instructions.
	DraftDocumentPromptV1 = `You are an expert medical scribe.

Practice/Provider Information:
%s

Patient Information: %s
(If gender is 'Unknown', infer it from the transcript if possible, otherwise use gender-neutral terms).

Additional Context Provided: %s

Transcript:
%s

Instructions:
%s

Format the document professionally using Markdown. Include the practice information in the header if relevant to the document type (e.g. Referral).`

	// InferTitlePromptV1 args: transcript.
	InferTitlePromptV1 = `Generate a very short, concise title (max 5 words) for this medical session based on the transcript. It should reflect the main reason for visit or diagnosis (e.g., "Acute Bronchitis Follow-up", "Hypertension Consult"). Do not include words like "Session" or "Visit" unless necessary. Transcript: %s`

	// ExtractTasksPromptV1 args: note.
	ExtractTasksPromptV1 = `Extract a JSON list of actionable tasks specifically for the PHYSICIAN to complete after the session.
Focus on orders, referrals, prescriptions, billing queries, or administrative follow-ups.
Do NOT include instructions for the patient (like "Rest and drink fluids").

Keep the task content VERY succinct, direct, and imperative (e.g. "Order chest X-ray", "Refer to Cardiology", "Prescribe Amoxicillin").

For each task, provide 'content' and a 'tag'.
Tags must be one of: 'Prescription', 'Referral', 'Lab/Imaging', 'Admin', 'Follow-up'.

Return strictly a JSON array of objects.
Note: %s`

	// ExtractedTasksSchema is the JSON schema an extraction reply must satisfy.
	ExtractedTasksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "content": {"type": "string"},
      "tag": {"type": "string"}
    }
  }
}`
)
