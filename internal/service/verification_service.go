package service

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"skillverify_backend/internal/model"
	"skillverify_backend/internal/repository"
	"skillverify_backend/pkg/logger"
	"skillverify_backend/pkg/monitoring"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	assessmentTimeLimit = 15 // 分钟
	mockTestTimeLimit   = 60

	defaultNumQuestions = 5
	mockSectionSize     = 5
	aptitudePoints      = 5

	// 编程题只做长度启发式检查，不执行代码
	codingAnswerMinRunes = 20

	passThreshold      = 60.0
	excellentThreshold = 80.0
)

// VerificationService 技能测评引擎：组卷、按参数重建试卷、判分。
// 构造后只持有只读数据，可被并发请求共享
type VerificationService struct {
	Repo *repository.TemplateRepository
	AI   *QuestionAIService
}

func NewVerificationService(repo *repository.TemplateRepository, ai *QuestionAIService) *VerificationService {
	return &VerificationService{Repo: repo, AI: ai}
}

// seededRNG 用测评 ID 派生采样种子。同一 ID 重建出的试卷与原卷逐字一致，
// 这是无持久化判分能够成立的前提
func seededRNG(assessmentID string) *rand.Rand {
	sum := sha256.Sum256([]byte(assessmentID))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}

func pointsFor(difficulty model.DifficultyLevel) int {
	switch difficulty {
	case model.DifficultyIntermediate:
		return 20
	case model.DifficultyAdvanced:
		return 30
	default:
		return 10
	}
}

// GenerateAssessment 标准测评：单一难度，固定 15 分钟
func (s *VerificationService) GenerateAssessment(req model.AssessmentRequest) *model.AssessmentResponse {
	resp := s.buildAssessment(req, uuid.NewString())
	monitoring.AssessmentGenerated.WithLabelValues("assessment", "template").Inc()
	return resp
}

// RegenerateAssessment 按原始参数重建已发放的测评，用于判分
func (s *VerificationService) RegenerateAssessment(req model.AssessmentRequest, assessmentID string) *model.AssessmentResponse {
	return s.buildAssessment(req, assessmentID)
}

func (s *VerificationService) buildAssessment(req model.AssessmentRequest, assessmentID string) *model.AssessmentResponse {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyIntermediate
	}
	count := req.NumQuestions
	if count <= 0 {
		count = defaultNumQuestions
	}

	rng := seededRNG(assessmentID)
	templates := s.Repo.Lookup(req.Skill, difficulty)
	questions := selectQuestions(rng, templates, difficulty, count, req.Skill, assessmentID, 0)

	return &model.AssessmentResponse{
		AssessmentID:     assessmentID,
		Skill:            req.Skill,
		Questions:        questions,
		TotalPoints:      sumPoints(questions),
		TimeLimitMinutes: assessmentTimeLimit,
	}
}

// GenerateMockTest 完整模拟测试：5 初级 + 5 中级 + 5 高级 + 5 能力题 + 5 编程题。
// 配置了 AI Key 时优先走生成路径，失败时落回模板题库
func (s *VerificationService) GenerateMockTest(req model.MockTestRequest) *model.AssessmentResponse {
	assessmentID := uuid.NewString()

	if s.AI != nil && s.AI.Enabled() {
		resp, err := s.buildMockTestWithAI(req, assessmentID)
		if err == nil {
			monitoring.AssessmentGenerated.WithLabelValues("mock_test", "ai").Inc()
			return resp
		}
		logger.Log.Error("AI generation failed, falling back to templates", zap.Error(err))
	}

	resp := s.buildMockTestFromTemplates(req, assessmentID)
	monitoring.AssessmentGenerated.WithLabelValues("mock_test", "template").Inc()
	return resp
}

// RegenerateMockTest 按已知 ID 重建模拟测试。生成路径无法确定性重放，
// 重建永远走模板路径；两条路径的题目 ID 序列和分值布局一致
func (s *VerificationService) RegenerateMockTest(req model.MockTestRequest, assessmentID string) *model.AssessmentResponse {
	return s.buildMockTestFromTemplates(req, assessmentID)
}

func (s *VerificationService) buildMockTestFromTemplates(req model.MockTestRequest, assessmentID string) *model.AssessmentResponse {
	rng := seededRNG(assessmentID)
	questions := make([]model.Question, 0, 25)

	// 三个难度段按固定偏移编号，ID 区间互不重叠
	sections := []struct {
		difficulty model.DifficultyLevel
		offset     int
	}{
		{model.DifficultyBeginner, 0},
		{model.DifficultyIntermediate, mockSectionSize},
		{model.DifficultyAdvanced, 2 * mockSectionSize},
	}
	for _, sec := range sections {
		templates := s.Repo.Lookup(req.PrimarySkill, sec.difficulty)
		questions = append(questions, selectQuestions(rng, templates, sec.difficulty, mockSectionSize, req.PrimarySkill, assessmentID, sec.offset)...)
	}

	questions = append(questions, s.aptitudeQuestions(rng, assessmentID)...)
	questions = append(questions, s.codingQuestions(assessmentID, req.PrimarySkill)...)

	return &model.AssessmentResponse{
		AssessmentID:     assessmentID,
		Skill:            req.PrimarySkill,
		Questions:        questions,
		TotalPoints:      sumPoints(questions),
		TimeLimitMinutes: mockTestTimeLimit,
	}
}

func (s *VerificationService) buildMockTestWithAI(req model.MockTestRequest, assessmentID string) (*model.AssessmentResponse, error) {
	generated, err := s.AI.GenerateMockQuestions(req.PrimarySkill)
	if err != nil {
		return nil, err
	}

	// 按难度/类型分桶，编号方案与模板路径保持一致：
	// 同一 assessmentID 下两条路径的题目 ID 序列必须相同
	buckets := map[model.DifficultyLevel][]GeneratedQuestion{}
	var aptitude []GeneratedQuestion
	for _, g := range generated {
		if g.Type == string(model.QuestionTypeAptitude) {
			aptitude = append(aptitude, g)
			continue
		}
		d := model.DifficultyLevel(g.Difficulty)
		switch d {
		case model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced:
		default:
			d = model.DifficultyIntermediate
		}
		buckets[d] = append(buckets[d], g)
	}

	for _, d := range []model.DifficultyLevel{model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced} {
		if len(buckets[d]) != mockSectionSize {
			return nil, fmt.Errorf("AI returned %d %s questions, want %d", len(buckets[d]), d, mockSectionSize)
		}
	}
	if len(aptitude) != mockSectionSize {
		return nil, fmt.Errorf("AI returned %d aptitude questions, want %d", len(aptitude), mockSectionSize)
	}

	questions := make([]model.Question, 0, 25)
	offset := 0
	for _, d := range []model.DifficultyLevel{model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced} {
		for i, g := range buckets[d] {
			points := g.Points
			if points <= 0 {
				points = pointsFor(d)
			}
			questions = append(questions, model.Question{
				QuestionID:    fmt.Sprintf("%s-q%d", assessmentID, offset+i+1),
				Skill:         req.PrimarySkill,
				QuestionText:  g.QuestionText,
				QuestionType:  model.QuestionTypeMultipleChoice,
				Difficulty:    d,
				Options:       g.Options,
				CorrectAnswer: g.CorrectAnswer,
				Explanation:   g.Explanation,
				Points:        points,
			})
		}
		offset += mockSectionSize
	}
	for i, g := range aptitude {
		questions = append(questions, model.Question{
			QuestionID:    fmt.Sprintf("%s-apt%d", assessmentID, i+1),
			Skill:         "Aptitude",
			QuestionText:  g.QuestionText,
			QuestionType:  model.QuestionTypeAptitude,
			Difficulty:    model.DifficultyIntermediate,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
			Points:        aptitudePoints,
		})
	}

	questions = append(questions, s.codingQuestions(assessmentID, req.PrimarySkill)...)

	return &model.AssessmentResponse{
		AssessmentID:     assessmentID,
		Skill:            req.PrimarySkill,
		Questions:        questions,
		TotalPoints:      sumPoints(questions),
		TimeLimitMinutes: mockTestTimeLimit,
	}, nil
}

func (s *VerificationService) aptitudeQuestions(rng *rand.Rand, assessmentID string) []model.Question {
	pool := s.Repo.AptitudePool()
	count := mockSectionSize
	if count > len(pool) {
		count = len(pool)
	}

	questions := make([]model.Question, 0, count)
	for i, idx := range rng.Perm(len(pool))[:count] {
		tmpl := pool[idx]
		questions = append(questions, model.Question{
			QuestionID:    fmt.Sprintf("%s-apt%d", assessmentID, i+1),
			Skill:         "Aptitude",
			QuestionText:  tmpl.Question,
			QuestionType:  model.QuestionTypeAptitude,
			Difficulty:    model.DifficultyIntermediate,
			Options:       tmpl.Options,
			CorrectAnswer: tmpl.Answer,
			Explanation:   tmpl.Explanation,
			Points:        aptitudePoints,
		})
	}
	return questions
}

func (s *VerificationService) codingQuestions(assessmentID, primarySkill string) []model.Question {
	templates := s.Repo.CodingTemplates()
	questions := make([]model.Question, 0, len(templates))
	for _, tmpl := range templates {
		skill := tmpl.Skill
		if skill == "" {
			skill = primarySkill
		}
		questions = append(questions, model.Question{
			QuestionID:    fmt.Sprintf("%s-%s", assessmentID, tmpl.IDSuffix),
			Skill:         skill,
			QuestionText:  tmpl.Question,
			QuestionType:  model.QuestionTypeCoding,
			Difficulty:    tmpl.Difficulty,
			CorrectAnswer: "N/A",
			Explanation:   tmpl.Explanation,
			Points:        tmpl.Points,
			CodeTemplate:  tmpl.CodeTemplate,
		})
	}
	return questions
}

// selectQuestions 从模板桶中抽取恰好 count 道题。
// 桶为空时合成占位题；数量不足时先取整桶，剩余部分放回抽样补齐。
// offset 让同一张卷的多个难度段编号互不重叠
func selectQuestions(rng *rand.Rand, templates []model.QuestionTemplate, difficulty model.DifficultyLevel, count int, skill, assessmentID string, offset int) []model.Question {
	questions := make([]model.Question, 0, count)

	if len(templates) == 0 {
		for i := 0; i < count; i++ {
			questions = append(questions, model.Question{
				QuestionID:   fmt.Sprintf("%s-q%d", assessmentID, offset+i+1),
				Skill:        skill,
				QuestionText: fmt.Sprintf("Concept check: Explain the core principles of %s related to %s concepts.", skill, difficulty),
				QuestionType: model.QuestionTypeMultipleChoice,
				Difficulty:   difficulty,
				Options: []string{
					fmt.Sprintf("%s Principle A", skill),
					fmt.Sprintf("%s Principle B", skill),
					fmt.Sprintf("%s Principle C", skill),
					"All of the above",
				},
				CorrectAnswer: "All of the above",
				Explanation:   "Understanding core principles is key.",
				Points:        10,
			})
		}
		return questions
	}

	var selected []model.QuestionTemplate
	if count <= len(templates) {
		for _, idx := range rng.Perm(len(templates))[:count] {
			selected = append(selected, templates[idx])
		}
	} else {
		selected = append(selected, templates...)
		for len(selected) < count {
			selected = append(selected, templates[rng.Intn(len(templates))])
		}
	}

	points := pointsFor(difficulty)
	for i, tmpl := range selected {
		questions = append(questions, model.Question{
			QuestionID:    fmt.Sprintf("%s-q%d", assessmentID, offset+i+1),
			Skill:         skill,
			QuestionText:  tmpl.Question,
			QuestionType:  model.QuestionTypeMultipleChoice,
			Difficulty:    difficulty,
			Options:       tmpl.Options,
			CorrectAnswer: tmpl.Answer,
			Explanation:   tmpl.Explanation,
			Points:        points,
		})
	}
	return questions
}

// EvaluateAssessment 对照试卷逐题判分。提交中多余的答案被忽略，
// 缺答按错误处理，不会因为不匹配而报错
func (s *VerificationService) EvaluateAssessment(submission model.AssessmentSubmission, assessment *model.AssessmentResponse) *model.AssessmentResult {
	answerMap := make(map[string]string, len(submission.Answers))
	for _, ans := range submission.Answers {
		// 同一题重复提交，后者覆盖前者
		answerMap[ans.QuestionID] = ans.UserAnswer
	}

	score := 0
	maxScore := assessment.TotalPoints
	var feedback []string
	var recommendations []string
	seenRec := make(map[string]bool)
	addRec := func(rec string) {
		if !seenRec[rec] {
			seenRec[rec] = true
			recommendations = append(recommendations, rec)
		}
	}

	for _, question := range assessment.Questions {
		userAnswer := answerMap[question.QuestionID]

		if question.QuestionType == model.QuestionTypeCoding {
			if utf8.RuneCountInString(strings.TrimSpace(userAnswer)) > codingAnswerMinRunes {
				score += question.Points
				feedback = append(feedback, "✓ Coding Task: Submitted (AI Review Pending)")
			} else {
				feedback = append(feedback, "✗ Coding Task: Incomplete")
				addRec(fmt.Sprintf("Practice coding problems for %s", question.Skill))
			}
			continue
		}

		if answersMatch(userAnswer, question.CorrectAnswer) {
			score += question.Points
			feedback = append(feedback, fmt.Sprintf("✓ Question %s: Correct!", question.QuestionID))
		} else {
			feedback = append(feedback, fmt.Sprintf(
				"✗ Question %s: Incorrect. Correct answer: %s. Explanation: %s",
				question.QuestionID, question.CorrectAnswer, question.Explanation,
			))
			if question.Difficulty == model.DifficultyBeginner {
				addRec(fmt.Sprintf("Review basics of %s", question.Skill))
			}
		}
	}

	percentage := 0.0
	if maxScore > 0 {
		percentage = math.Round(float64(score)/float64(maxScore)*1000) / 10
	}

	confidence := "Needs Improvement"
	passed := false
	switch {
	case percentage >= excellentThreshold:
		confidence = "Excellent"
		passed = true
	case percentage >= passThreshold:
		confidence = "Good"
		passed = true
	}

	monitoring.AssessmentEvaluated.WithLabelValues(fmt.Sprintf("%t", passed)).Inc()

	return &model.AssessmentResult{
		AssessmentID:    submission.AssessmentID,
		UserID:          submission.UserID,
		Skill:           assessment.Skill,
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      percentage,
		ConfidenceLevel: confidence,
		Passed:          passed,
		Feedback:        feedback,
		Recommendations: recommendations,
	}
}

// 判分只做去首尾空白和大小写折叠，不做模糊匹配
func answersMatch(userAnswer, correctAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(correctAnswer))
}

func sumPoints(questions []model.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
