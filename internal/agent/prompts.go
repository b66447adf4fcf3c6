package agent

import "fmt"

// Prompt templates for the specialized handlers. Kept in one place so prompt
// changes never touch handler logic.

const generalChatSystem = `You are a helpful AI assistant in a chatbot that can:
1. Generate code when requested (just ask me to write any code!)
2. Extract text from PDF files when uploaded
3. Analyze CSV files and provide intelligent suggestions when uploaded

For general questions, provide helpful and concise responses.`

func codeGenerationPrompt(userPrompt, language string) string {
	return fmt.Sprintf(`You are an expert %[1]s programmer. Generate clean, efficient, and well-documented code.

USER REQUEST: %[2]s

INSTRUCTIONS:
1. Write production-quality %[1]s code that fulfills the user's request
2. Include clear comments explaining the logic
3. Follow %[1]s best practices and style guidelines
4. Make the code modular and reusable
5. Include error handling where appropriate
6. Add documentation for functions and types

Generate ONLY the code, without additional explanations or markdown formatting.
`, language, userPrompt)
}

func codeReviewPrompt(code, language, originalPrompt string) string {
	return fmt.Sprintf(`You are a senior code reviewer. Review this %[1]s code and provide constructive feedback.

ORIGINAL REQUEST: %[2]s

CODE TO REVIEW:
`+"```%[1]s\n%[3]s\n```"+`

Provide a concise review covering:
1. **Correctness**: Does it fulfill the requirements?
2. **Quality**: Code organization, readability, best practices
3. **Security**: Any potential security issues?
4. **Performance**: Any performance concerns?
5. **Suggestions**: 1-2 key improvements (if any)

Keep the review brief and actionable (200 words max).
`, language, originalPrompt, code)
}

func pdfSummaryPrompt(textSample string) string {
	return fmt.Sprintf(`Provide a brief 2-3 sentence summary of this document content:

%s

Focus on the main topic and purpose of the document.`, textSample)
}

func csvSuggestionPrompt(profile TableProfile) string {
	return fmt.Sprintf(`You are a data analysis expert. Analyze this CSV file and provide insights.

CSV DETAILS:
- Rows: %d
- Columns: %d
- Column Names: %s

SAMPLE DATA (first rows):
%s

Provide:
1. A brief 1-2 sentence summary describing what this CSV contains (e.g., "employee details", "sales data", "customer information")
2. Exactly 4-5 specific, actionable suggestions for what the user could do with this data.
   Good suggestions include things like: viewing value distributions, checking data
   quality (missing values, duplicates), spotting trends over time, exporting a
   filtered subset, or generating a summary report.

Format your response as JSON:
{
  "content_summary": "Brief description of the CSV content",
  "suggestions": [
    {"id": 1, "title": "Suggestion title", "description": "Brief description"},
    {"id": 2, "title": "Suggestion title", "description": "Brief description"}
  ]
}

IMPORTANT: Return ONLY valid JSON, no additional text.
`, profile.NumRows, len(profile.Columns), profile.columnNames(), profile.sampleBlock())
}
