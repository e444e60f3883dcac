// Package prompt provides the centralized prompt builder for investigation
// and synthesis runs. It composes system messages, user messages, and the
// instruction hierarchy, and implements the controller Strategy variants.
package prompt

// analysisTask is the investigation task instruction appended to the user message.
const analysisTask = `## Your Task
Use the available tools to investigate this alert and provide:
1. Root cause analysis
2. Current system state assessment
3. Specific remediation steps for human operators
4. Prevention recommendations

Be thorough in your investigation before providing the final answer.`

// synthesisTask is the synthesis task instruction for combining parallel results.
const synthesisTask = `Synthesize the investigation results and provide your comprehensive analysis.`

const taskFocus = "Focus on investigation and providing recommendations for human operators to execute."

// reactFormatInstructions teaches the model the textual tool-calling
// protocol the response parser expects. Kept in lockstep with the parser's
// section headers.
const reactFormatInstructions = `## Response Format

Answer using this exact format:

Thought: [your reasoning about what to do next]
Action: server.tool_name
Action Input: {"parameter": "value"}

After each action you will receive an Observation with the tool result.
Continue the Thought/Action/Action Input cycle until you can answer, then:

Thought: [your final reasoning]
Final Answer: [your complete analysis]

Rules:
- "Action" must be a tool name from the available tools list, in server.tool form
- "Action Input" must follow immediately after "Action"
- Provide "Final Answer" only when the investigation is complete
- Never write an Observation yourself; observations are provided to you`
