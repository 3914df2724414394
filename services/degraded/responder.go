// Package degraded serves canned markdown when no provider can be reached
// because the gateway has no credential or no models configured.
package degraded

import (
	"strings"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
)

const fence = "```"

// Respond returns the canned response for an action. It never fails;
// unknown actions get the explain response.
func Respond(action prompt.Action, language string) string {
	var tmpl string
	switch action {
	case prompt.ActionExplain:
		tmpl = explainResponse
	case prompt.ActionOptimize:
		tmpl = optimizeResponse
	case prompt.ActionComment:
		tmpl = commentResponse
	case prompt.ActionDebug:
		tmpl = debugResponse
	case prompt.ActionConvert:
		tmpl = convertResponse
	case prompt.ActionGenerate:
		tmpl = generateResponse
	case prompt.ActionReview:
		tmpl = reviewResponse
	default:
		tmpl = explainResponse
	}
	return strings.ReplaceAll(tmpl, "{language}", language)
}

const explainResponse = `## Code Explanation for {language}

This code demonstrates core {language} functionality and patterns.

### Overview
The code you've provided showcases:
- Basic {language} syntax and structure
- Common programming patterns
- Standard library usage

### Key Components
1. **Main Logic**: The primary function/entry point
2. **Data Structures**: Variables and data handling
3. **Control Flow**: Conditionals and loops

---
🤖 **This is a demo response.** To get real AI analysis:
1. Sign up at [openrouter.ai](https://openrouter.ai)
2. Get your API key
3. Set it as ` + "`OPENROUTER_API_KEY`" + ` in the gateway environment`

const optimizeResponse = `## Optimization Suggestions for {language}

Here are recommendations to improve your code:

### Performance
- Consider caching repeated computations
- Use appropriate data structures for O(1) lookups
- Minimize memory allocations in loops

### Readability
- Use descriptive variable names
- Extract complex logic into well-named functions
- Add error handling for edge cases

### Best Practices
- Follow {language} style guidelines
- Add input validation
- Include documentation comments

---
🤖 **Connect your OpenRouter API key for real optimization suggestions.**`

const commentResponse = `## Commented Code

Your code with comprehensive documentation:

` + fence + `{language}
// Main entry point - initializes the program
// This function handles the core logic

// Add your actual code here with comments
// Each section would have detailed explanations
// Complex algorithms would be broken down step by step
` + fence + `

---
🤖 **Connect your API key for AI-generated comments.**`

const debugResponse = `## Debug Analysis

### Potential Issues Found
1. Check for null/undefined values
2. Verify loop boundaries
3. Examine type conversions

### Debugging Steps
1. Add logging at key points
2. Check input validation
3. Test edge cases

---
🤖 **Connect your API key for detailed debugging assistance.**`

const convertResponse = `## Code Conversion

Code conversion requires an active AI connection to ensure accurate translation between languages.

### Manual Conversion Tips
- Map equivalent data types
- Handle language-specific features
- Adapt to idiomatic patterns

---
🤖 **Connect your API key for automatic code conversion.**`

const generateResponse = `## Code Generation

Code generation requires an active AI connection.

### What AI Generation Provides
- Production-ready code
- Error handling
- Documentation
- Best practices

---
🤖 **Connect your API key for AI code generation.**`

const reviewResponse = `## Code Review Summary

### Areas for Review
- **Security**: Input validation, sanitization
- **Performance**: Algorithm efficiency
- **Maintainability**: Code structure, naming
- **Testing**: Test coverage considerations

---
🤖 **Connect your API key for detailed code review.**`
