package storage

// InterviewResult представляет результат всего интервью
type InterviewResult struct {
	InterviewID         string `json:"interview_id"`
	Timestamp           string `json:"timestamp"`
	Role                string `json:"role"`
	Company             string `json:"company,omitempty"`
	Round               string `json:"round"`
	Difficulty          string `json:"difficulty"`
	Strategy            string `json:"strategy"`
	Finished            bool   `json:"finished"`
	QuestionsAndAnswers []QA   `json:"questions_and_answers"`
}

// QA представляет один вопрос и ответ
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Answered bool   `json:"answered"`
}
