package model

// QuestionType 题目类型
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeAptitude       QuestionType = "aptitude"
	QuestionTypeCoding         QuestionType = "coding"
)

// DifficultyLevel 题目难度
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// QuestionTemplate 静态题库模板，加载后不再修改
type QuestionTemplate struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// CodingTemplate 固定编程题模板。Skill 为空时使用请求者的主技能
type CodingTemplate struct {
	IDSuffix     string          `json:"idSuffix"`
	Skill        string          `json:"skill"`
	Question     string          `json:"question"`
	Difficulty   DifficultyLevel `json:"difficulty"`
	Explanation  string          `json:"explanation"`
	Points       int             `json:"points"`
	CodeTemplate string          `json:"codeTemplate"`
}

// Question 测评实例化后的题目，归属于一次 AssessmentResponse
type Question struct {
	QuestionID    string          `json:"questionId"`
	Skill         string          `json:"skill"`
	QuestionText  string          `json:"questionText"`
	QuestionType  QuestionType    `json:"questionType"`
	Difficulty    DifficultyLevel `json:"difficulty"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer string          `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Points        int             `json:"points"`
	CodeTemplate  string          `json:"codeTemplate,omitempty"`
}

type AssessmentRequest struct {
	UserID       string          `json:"userId" binding:"required"`
	Skill        string          `json:"skill" binding:"required"`
	Difficulty   DifficultyLevel `json:"difficulty"`
	NumQuestions int             `json:"numQuestions"`
}

type MockTestRequest struct {
	UserID       string `json:"userId" binding:"required"`
	PrimarySkill string `json:"primarySkill" binding:"required"`
}

type AssessmentResponse struct {
	AssessmentID     string     `json:"assessmentId"`
	Skill            string     `json:"skill"`
	Questions        []Question `json:"questions"`
	TotalPoints      int        `json:"totalPoints"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"`
}

type AnswerSubmission struct {
	QuestionID string `json:"questionId" binding:"required"`
	UserAnswer string `json:"userAnswer"`
}

// AssessmentSubmission 无持久化设计：提交体需要携带原始生成参数，
// 评分时按参数重建试卷（见 service.VerificationService）
type AssessmentSubmission struct {
	AssessmentID string             `json:"assessmentId" binding:"required"`
	UserID       string             `json:"userId" binding:"required"`
	Answers      []AnswerSubmission `json:"answers"`
	Skill        string             `json:"skill"`
	Difficulty   DifficultyLevel    `json:"difficulty"`
	NumQuestions int                `json:"numQuestions"`
}

type AssessmentResult struct {
	AssessmentID    string   `json:"assessmentId"`
	UserID          string   `json:"userId"`
	Skill           string   `json:"skill"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"maxScore"`
	Percentage      float64  `json:"percentage"`
	ConfidenceLevel string   `json:"confidenceLevel"`
	Passed          bool     `json:"passed"`
	Feedback        []string `json:"feedback"`
	Recommendations []string `json:"recommendations"`
}
