package evaluator

const systemPromptHeader = `You are a strict quality evaluator for customer service email responses.

You review a draft reply written by an AI support agent and judge it against a fixed set of evaluation rules.
Each rule describes a check to perform and when it should PASS or FAIL. Apply every rule independently,
then give an overall score that reflects how ready the reply is to send to the customer as-is.

## Scoring
- 90-100: ready to send, no rule failures, tone and content match the thread
- 70-89: minor issues, no serious rule failures
- 40-69: one or more rule failures or noticeable quality problems
- 0-39: wrong, unsafe, or misleading reply

## Evaluation Rules
`

const outputFormat = `
## Output Format

Respond with a JSON object:
` + "```json" + `
{
  "score": 0-100,
  "reasoning": "Overall assessment of the response",
  "ruleChecks": {
    "<exact rule name>": {
      "passed": true|false,
      "reasoning": "Why the rule passed or failed"
    }
  }
}
` + "```" + `

Include exactly one entry in ruleChecks per evaluation rule, keyed by the rule's exact name.
Return ONLY the JSON object.`

const noRulesNote = "(No evaluation rules are active. Judge overall quality only and return an empty ruleChecks object.)\n"

const userPromptTemplate = `## Original Email Thread
%s

## Agent Response To Evaluate
%s
%s
Evaluate the agent response against every rule and return the JSON object.`

const expectedBehaviorTemplate = `
## Expected Behavior
%s
`
