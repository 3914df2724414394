package prompt

import (
	"fmt"
	"strings"
)

// Messages is the system/user pair sent to a chat model
type Messages struct {
	System string
	User   string
}

// Build renders the system and user messages for a request.
// An action outside the supported set is rendered with the explain templates;
// callers are expected to validate the action before getting here.
func Build(rc RequestContext) Messages {
	switch rc.Action {
	case ActionExplain:
		return Messages{System: explainSystem(rc), User: explainUser(rc)}
	case ActionOptimize:
		return Messages{System: optimizeSystem(rc), User: optimizeUser(rc)}
	case ActionComment:
		return Messages{System: commentSystem(rc), User: commentUser(rc)}
	case ActionDebug:
		return Messages{System: debugSystem(rc), User: debugUser(rc)}
	case ActionConvert:
		return Messages{System: convertSystem(rc), User: convertUser(rc)}
	case ActionGenerate:
		return Messages{System: generateSystem(rc), User: generateUser(rc)}
	case ActionReview:
		return Messages{System: reviewSystem(rc), User: reviewUser(rc)}
	default:
		return Messages{System: explainSystem(rc), User: explainUser(rc)}
	}
}

func fenced(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}

func bullets(items ...string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

func explainSystem(rc RequestContext) string {
	return fmt.Sprintf("You are an expert %s developer and educator. Provide clear, comprehensive explanations that help developers understand code deeply. Use markdown formatting for better readability. Include:\n%s",
		rc.Language,
		bullets("High-level overview", "Step-by-step breakdown", "Key concepts explained", "Potential improvements or considerations"))
}

func explainUser(rc RequestContext) string {
	if rc.Output != "" {
		return fmt.Sprintf("Explain this %s code and the error/output it produced:\n\n**Code:**\n%s\n\n**Output/Error:**\n%s",
			rc.Language, fenced(rc.Language, rc.Code), fenced("", rc.Output))
	}
	return fmt.Sprintf("Explain this %s code in detail:\n\n%s", rc.Language, fenced(rc.Language, rc.Code))
}

func optimizeSystem(rc RequestContext) string {
	return fmt.Sprintf("You are a senior %s performance engineer. Analyze code for optimization opportunities and provide improved versions. Focus on:\n%s\nAlways provide the optimized code in a code block.",
		rc.Language,
		bullets("Performance improvements", "Memory efficiency", "Code readability", "Best practices", "Modern language features"))
}

func optimizeUser(rc RequestContext) string {
	return fmt.Sprintf("Optimize this %s code for better performance and readability:\n\n%s", rc.Language, fenced(rc.Language, rc.Code))
}

func commentSystem(rc RequestContext) string {
	return fmt.Sprintf("You are a %s documentation specialist. Add comprehensive inline comments and documentation to code. Include:\n%s\nReturn the fully commented code in a code block.",
		rc.Language,
		bullets("Function/method documentation with parameters and return values", "Complex logic explanations", "Algorithm descriptions", "Edge case notes"))
}

func commentUser(rc RequestContext) string {
	return fmt.Sprintf("Add comprehensive comments to this %s code:\n\n%s", rc.Language, fenced(rc.Language, rc.Code))
}

func debugSystem(rc RequestContext) string {
	return fmt.Sprintf("You are a %s debugging expert. Analyze code and error output to identify and fix issues. Provide:\n%s",
		rc.Language,
		bullets("Root cause analysis", "Step-by-step debugging approach", "Fixed code with explanations", "Prevention tips for similar issues"))
}

func debugUser(rc RequestContext) string {
	output := rc.Output
	if output == "" {
		output = "No output provided"
	}
	return fmt.Sprintf("Debug this %s code:\n\n**Code:**\n%s\n\n**Error/Output:**\n%s",
		rc.Language, fenced(rc.Language, rc.Code), fenced("", output))
}

func convertSystem(rc RequestContext) string {
	target := rc.TargetLanguage
	if target == "" {
		target = "multiple languages"
	}
	return fmt.Sprintf("You are a polyglot programmer expert in %s and %s. Convert code between languages while:\n%s",
		rc.Language, target,
		bullets("Maintaining functionality", "Using idiomatic patterns for target language", "Handling language-specific differences", "Adding comments for non-obvious conversions"))
}

func convertUser(rc RequestContext) string {
	target := rc.TargetLanguage
	if target == "" {
		target = "the requested language"
	}
	return fmt.Sprintf("Convert this %s code to %s:\n\n%s", rc.Language, target, fenced(rc.Language, rc.Code))
}

func generateSystem(rc RequestContext) string {
	return fmt.Sprintf("You are an expert %s developer. Generate high-quality, production-ready code based on requirements. Include:\n%s",
		rc.Language,
		bullets("Clean, well-structured code", "Error handling", "Comments for complex sections", "Example usage where appropriate"))
}

func generateUser(rc RequestContext) string {
	if rc.CustomPrompt != "" {
		return rc.CustomPrompt
	}
	return fmt.Sprintf("Generate %s code based on the following:\n\n%s", rc.Language, rc.Code)
}

func reviewSystem(rc RequestContext) string {
	return fmt.Sprintf("You are a senior %s code reviewer. Provide thorough code review feedback including:\n%s",
		rc.Language,
		bullets("Code quality assessment", "Security considerations", "Performance implications", "Maintainability suggestions", "Specific improvement recommendations with examples"))
}

func reviewUser(rc RequestContext) string {
	return fmt.Sprintf("Review this %s code and provide detailed feedback:\n\n%s", rc.Language, fenced(rc.Language, rc.Code))
}
