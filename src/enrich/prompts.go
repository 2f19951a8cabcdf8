package enrich

import "fmt"

const systemPreface = `You are assisting a small team building a persistent, space-based MMO/RTS in Unity with a Go backend.
Pillars: persistent galaxy; player-built economy; territory control; fleets; tech/progression; strategic UI; server authority.
Client: Unity (UI, rendering, input, game logic). Server: Go (REST/WS, jobs, economy, state). Data: MySQL/Redis.
Return practical, implementable design notes; concise; no lore; no code unless asked.`

const jsonShape = `Return ONLY valid JSON with this exact shape:
{
  "title": "Short, descriptive (<= 80 chars)",
  "summary": "2-4 sentences explaining the idea & player value",
  "gameplayImpact": "How this changes gameplay or player experience",
  "scope": {
    "client": ["Replace with concrete client work items (e.g., 'Add fleet tab in UI', 'Click handler for assign'). If none, use [\"None\"]"],
    "server": ["Replace with concrete server work items (e.g., 'POST /fleets/assign', 'validate ownership'). If none, use [\"None\"]"],
    "database": ["Describe DB impact (e.g., 'Add table fleet_assignment') or [\"No changes\"]"]
  },
  "implementationNotes": ["task 1","task 2","task 3"],
  "risks": ["risk 1","risk 2"],
  "telemetry": ["what to log/measure"],
  "antiCheat": ["server-authority validations"],
  "dependencies": ["systems/configs impacted"],
  "openQuestions": ["clear questions for the player (max 3)"],
  "tags": ["UI","Economy","Fleet","Territory","PvP","PvE","Server","DB","QoL","Balance"]
}
Rules:
- Do NOT copy example labels like "UI", "3D assets", "API/WS endpoint", etc. Replace them with concrete items or use ["None"] / ["No changes"].
- If a section is N/A, use ["None"] or ["No changes"] (for database) instead of empty arrays.
- Keep openQuestions to at most 3.
- Output only JSON.`

func firstPassPrompt(raw, author string) string {
	return fmt.Sprintf(`Given the raw player idea below, produce a concise, developer-ready design note as JSON.
- Fill "scope.client" / "scope.server" with concrete work items (or ["None"]).
- Set "scope.database" to specific changes or ["No changes"].
- Ask at most 3 openQuestions only if truly needed; otherwise [].

<author>%s</author>

%s

Raw player idea:
"""%s"""`, author, jsonShape, raw)
}

func refinePrompt(raw, answers, author, previousJSON string) string {
	return fmt.Sprintf("Your task is to refine the existing design note based on player clarifications.\n"+
		"Keep **openQuestions** to **at most 3**, and remove any that are now answered.\n\n"+
		"Here is the existing structured design note JSON:\n```json\n%s\n```\n\n"+
		"Here are the player's clarifications (Q/A):\n```\n%s\n```\n\n"+
		"Update and improve the design note to reflect the clarifications.\n\n"+
		"CRITICAL REQUIREMENTS:\n"+
		"- Return ONLY valid JSON\n"+
		"- Keep the same overall structure and fields\n"+
		"- Fill in missing gameplayImpact, scope, implementationNotes, and risks\n"+
		"- Remove any openQuestions that are now answered\n"+
		"- Do NOT add new sections not requested\n"+
		"- Do NOT remove required fields\n\n"+
		"Return JSON in this shape:\n\n%s\n\n"+
		"Original raw idea:\n\"\"\"%s\"\"\"\n"+
		"Submitted by: %s", previousJSON, answers, jsonShape, raw, author)
}
