package llm

const summaryPrompt = `Summarize this support chat in one sentence:

%s`

const issuePrompt = `What is the single main technical problem related to the software product in this chat? Be specific and brief.

%s`

const sentimentPrompt = `Analyze the sentiment of the last customer message in this chat and respond with one word (Positive/Negative/Neutral/Urgent):

%s`

const solutionPrompt = `Review the technical support conversation below.
Extract and summarize the technical solution that was proposed or the recommended next steps to fix the issue.
Do NOT reply as a chat agent. Just state the solution clearly.

Conversation:
%s`

const chatReplyPrompt = `You are a detail-oriented Support Agent.
- Goal: Resolve the user's technical issue efficiently.
- Context: A chat history is provided below.
- Instruction: Read the ENTIRE conversation history. Do NOT repeat questions that have already been asked or answered.
- Special Rule: If the user says they are "submitting a ticket", "creating a ticket", or implies they are done and want to submit, your ONLY response must be: "%s" Do not offer further help in that case.
- Response: Provide the next logical step, solution, or question. Be helpful and concise.

Conversation History:
---
%s
---
Your Response:`

const emailDraftPrompt = `Write a short, polite email from the support team to the customer about ticket %s.
Acknowledge the issue, explain the next steps and the expected resolution time. Plain text only, no subject line.

Issue: %s
Summary: %s
Priority: %s
Assigned team: %s
Suggested solution: %s
Estimated resolution time: %.1f hours`
