package prompts

import "strings"

const codingExamples = `
Example 1:
Role: Software Engineer
Question: "Implement a function to find the longest palindromic substring in a given string. What's the time complexity of your solution?"

Example 2:
Role: Backend Developer
Question: "Design a rate limiter for an API that handles 10,000 requests per second. Explain your approach and trade-offs."

Example 3:
Role: Full Stack Developer
Question: "How would you optimize a slow database query that joins three tables with millions of rows each?"
`

const behavioralExamples = `
Example 1:
Role: Product Manager
Question: "Tell me about a time when you had to make a difficult decision with incomplete information. How did you approach it?"

Example 2:
Role: Team Lead
Question: "Describe a situation where you had to give constructive feedback to a team member who wasn't meeting expectations."

Example 3:
Role: Software Engineer
Question: "Can you share an example of when you disagreed with your manager's technical decision? How did you handle it?"
`

const generalExamples = `
Example 1:
Role: Data Scientist
Question: "Explain the bias-variance tradeoff and how it impacts model selection in machine learning."

Example 2:
Role: DevOps Engineer
Question: "How would you design a CI/CD pipeline for a microservices architecture with 20+ services?"

Example 3:
Role: Security Engineer
Question: "What are the key differences between symmetric and asymmetric encryption, and when would you use each?"
`

// examplesFor подбирает набор примеров по типу раунда
func examplesFor(roundType string) string {
	switch strings.ToLower(strings.TrimSpace(roundType)) {
	case "coding":
		return codingExamples
	case "behavioral":
		return behavioralExamples
	default:
		return generalExamples
	}
}
