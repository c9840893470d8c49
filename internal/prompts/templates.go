package prompts

import (
	"fmt"
	"strings"
)

func zeroShot(in Input) string {
	var prompt strings.Builder

	prompt.WriteString("Generate a single interview question for the following position:\n\n")
	prompt.WriteString(fmt.Sprintf("Role: %s\n", in.Role))
	prompt.WriteString(fmt.Sprintf("Company: %s\n", companyOrDefault(in.Company)))
	prompt.WriteString(fmt.Sprintf("Interview Round: %s\n", in.RoundType))
	prompt.WriteString(fmt.Sprintf("Difficulty Level: %s\n\n", in.Difficulty))

	prompt.WriteString("Previously asked questions (avoid repetition):\n")
	prompt.WriteString(priorList(in.PreviousQuestions))
	prompt.WriteString("\n\n")

	prompt.WriteString("Generate exactly ONE challenging and relevant interview question.\n\n")
	prompt.WriteString("Question:")

	return prompt.String()
}

func fewShot(in Input) string {
	return fmt.Sprintf(`Here are examples of high-quality interview questions:
%s

Now generate a similar question for:
Role: %s
Company: %s
Interview Round: %s
Difficulty Level: %s

Previously asked questions (avoid these):
%s

Generate exactly ONE interview question following the style and quality of the examples above.

Question:`, examplesFor(in.RoundType), in.Role, companyOrDefault(in.Company), in.RoundType, in.Difficulty, priorList(in.PreviousQuestions))
}

func chainOfThought(in Input) string {
	return fmt.Sprintf(`You need to generate an interview question. Let's think through this step by step:

Step 1: Analyze the role and requirements
- Role: %[1]s
- Company: %[2]s
- Interview Round: %[3]s
- Difficulty Level: %[4]s

Step 2: Consider what skills are most important for this role
Think about: What are the key competencies needed for a %[1]s?

Step 3: Determine the appropriate question type
For %[3]s round at %[4]s level, what type of question would best assess the candidate?

Step 4: Review previously asked questions to avoid repetition
%[5]s

Step 5: Craft a question that:
- Tests relevant skills for the role
- Matches the difficulty level
- Is appropriate for the %[3]s round
- Doesn't repeat previous questions
- Encourages detailed, thoughtful responses

Now, based on this reasoning, generate exactly ONE interview question:

Question:`, in.Role, companyOrDefault(in.Company), in.RoundType, in.Difficulty, priorList(in.PreviousQuestions))
}

func roleBased(in Input) string {
	return fmt.Sprintf(`You are a senior technical recruiter with 15+ years of experience at top tech companies. You have conducted thousands of interviews and know how to assess candidates for demanding roles.

Your task is to create an interview question that will effectively evaluate a candidate applying for:

Position: %s
Company: %s
Interview Stage: %s
Candidate Level: %s

As an expert interviewer, you know that great questions should:
- Reveal the candidate's depth of knowledge
- Allow for follow-up discussions
- Differentiate between good and exceptional candidates
- Be fair and unbiased
- Relate to real-world scenarios

Questions already asked in this interview (avoid similar topics):
%s

Drawing on your experience, craft exactly ONE interview question that will help identify the best candidate for this role.

Question:`, in.Role, companyOrDefault(in.Company), in.RoundType, in.Difficulty, priorList(in.PreviousQuestions))
}

func structuredOutput(in Input) string {
	var prompt strings.Builder

	prompt.WriteString("Generate an interview question with the following specifications:\n\n")
	prompt.WriteString(fmt.Sprintf("TARGET ROLE: %s\n", in.Role))
	prompt.WriteString(fmt.Sprintf("COMPANY: %s\n", companyOrDefault(in.Company)))
	prompt.WriteString(fmt.Sprintf("INTERVIEW ROUND: %s\n", in.RoundType))
	prompt.WriteString(fmt.Sprintf("DIFFICULTY: %s\n\n", in.Difficulty))

	prompt.WriteString("REQUIREMENTS:\n")
	prompt.WriteString(fmt.Sprintf("1. The question must be relevant to the %s position\n", in.Role))
	prompt.WriteString(fmt.Sprintf("2. It should match the %s difficulty level\n", in.Difficulty))
	prompt.WriteString(fmt.Sprintf("3. It must be appropriate for the %s interview round\n", in.RoundType))
	prompt.WriteString("4. It should encourage detailed responses (not yes/no questions)\n")
	prompt.WriteString("5. It must be different from these previously asked questions:\n")
	prompt.WriteString(priorList(in.PreviousQuestions))
	prompt.WriteString("\n\n")

	prompt.WriteString("QUALITY CRITERIA:\n")
	prompt.WriteString("- Clarity: The question should be unambiguous\n")
	prompt.WriteString("- Relevance: Directly related to job responsibilities\n")
	prompt.WriteString("- Depth: Should assess understanding, not just memorization\n")
	prompt.WriteString("- Practicality: Related to real-world scenarios when possible\n\n")

	prompt.WriteString("OUTPUT FORMAT:\n")
	prompt.WriteString("Provide only the interview question, nothing else. The question should be:\n")
	prompt.WriteString("- One clear, focused question (may include follow-up parts)\n")
	prompt.WriteString("- Properly punctuated\n")
	prompt.WriteString("- Professional in tone\n\n")
	prompt.WriteString("Question:")

	return prompt.String()
}

func socratic(in Input) string {
	return fmt.Sprintf(`Let's create an excellent interview question by answering these guiding questions:

Q1: What is the role we're interviewing for?
A1: %[1]s

Q2: What are the core competencies required for a %[1]s?
A2: [Consider technical skills, soft skills, and domain knowledge]

Q3: What interview round is this?
A3: %[3]s

Q4: What specific skills should the %[3]s round assess?
A4: [Think about what this round uniquely evaluates]

Q5: What difficulty level are we targeting?
A5: %[4]s

Q6: How should questions differ between difficulty levels?
A6: [Consider complexity, depth, and expected experience]

Q7: What questions have already been asked?
A7: %[5]s

Q8: What topics or skills haven't been covered yet?
A8: [Identify gaps in the interview coverage]

Q9: What real-world challenges does a %[1]s at %[2]s face?
A9: [Think about practical, job-relevant scenarios]

Q10: Based on all these considerations, what single question would best assess the candidate?

Generate exactly ONE interview question:

Question:`, in.Role, companyOrDefault(in.Company), in.RoundType, in.Difficulty, priorList(in.PreviousQuestions))
}
