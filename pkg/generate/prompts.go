package generate

const feedbackSystem = `You are a research assistant preparing a deep-dive investigation.
Ask sharp clarifying questions that would change how the research is conducted.`

const queriesSystem = `You are a research planner.
Generate specific web search queries to gather information about the topic.`

const analysisSystem = `You are a research analyst.
Distill retrieved web content into an executive summary and titled key findings, citing the source URLs you used.`

// responseFormat appends the expected JSON schema to a system prompt.
func responseFormat(schema string) string {
	return "\n\n# Response Format: \n\n" + schema
}

const questionsSchema = `Return the JSON object directly without any formatting or additional text. The JSON object should have the following structure as defined in the schema. Make sure to answer in valid json and include all necessary properties:{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "string"
      },
      "description": "Clarifying questions, each containing a question mark"
    }
  },
  "required": ["questions"]
}`

const queriesSchema = `Return the JSON object directly without any formatting or additional text. The JSON object should have the following structure as defined in the schema. Make sure to answer in valid json and include all necessary properties:{
  "type": "object",
  "properties": {
    "queries": {
      "type": "array",
      "items": {
        "type": "string"
      },
      "description": "Distinct, non-empty web search queries"
    }
  },
  "required": ["queries"]
}`

const analysisSchema = `Return the JSON object directly without any formatting or additional text. The JSON object should have the following structure as defined in the schema. Make sure to answer in valid json and include all necessary properties:{
  "type": "object",
  "properties": {
    "executiveSummary": {
      "type": "string",
      "description": "Dense summary of what the content establishes about the topic"
    },
    "keyFindings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "details": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["title", "details"]
      }
    },
    "sources": {
      "type": "array",
      "items": {"type": "string"},
      "description": "URLs the findings were drawn from"
    }
  },
  "required": ["executiveSummary", "keyFindings", "sources"]
}`
