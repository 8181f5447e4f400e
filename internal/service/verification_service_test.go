package service

import (
	"fmt"
	"skillverify_backend/internal/model"
	"skillverify_backend/internal/repository"
	"skillverify_backend/pkg/logger"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestService() *VerificationService {
	return NewVerificationService(repository.NewTemplateRepository(), nil)
}

func correctSubmission(assessment *model.AssessmentResponse) model.AssessmentSubmission {
	answers := make([]model.AnswerSubmission, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		answer := q.CorrectAnswer
		if q.QuestionType == model.QuestionTypeCoding {
			answer = "def solution():\n    return 'a valid submission with enough length'"
		}
		answers = append(answers, model.AnswerSubmission{
			QuestionID: q.QuestionID,
			UserAnswer: answer,
		})
	}
	return model.AssessmentSubmission{
		AssessmentID: assessment.AssessmentID,
		UserID:       "u1",
		Answers:      answers,
	}
}

func TestGenerateAssessment_Scenario(t *testing.T) {
	svc := newTestService()

	resp := svc.GenerateAssessment(model.AssessmentRequest{
		UserID:       "u1",
		Skill:        "Python",
		Difficulty:   model.DifficultyBeginner,
		NumQuestions: 3,
	})

	if len(resp.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(resp.Questions))
	}
	for _, q := range resp.Questions {
		if q.Points != 10 {
			t.Errorf("question %s has %d points, want 10", q.QuestionID, q.Points)
		}
	}
	if resp.TotalPoints != 30 {
		t.Errorf("totalPoints = %d, want 30", resp.TotalPoints)
	}
	if resp.TimeLimitMinutes != 15 {
		t.Errorf("timeLimitMinutes = %d, want 15", resp.TimeLimitMinutes)
	}
}

func TestGenerateAssessment_PointsByDifficulty(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		difficulty model.DifficultyLevel
		points     int
	}{
		{model.DifficultyBeginner, 10},
		{model.DifficultyIntermediate, 20},
		{model.DifficultyAdvanced, 30},
	}

	for _, tt := range tests {
		resp := svc.GenerateAssessment(model.AssessmentRequest{
			UserID:       "u1",
			Skill:        "Python",
			Difficulty:   tt.difficulty,
			NumQuestions: 4,
		})
		for _, q := range resp.Questions {
			if q.Points != tt.points {
				t.Errorf("%s: question %s has %d points, want %d", tt.difficulty, q.QuestionID, q.Points, tt.points)
			}
		}
		if resp.TotalPoints != 4*tt.points {
			t.Errorf("%s: totalPoints = %d, want %d", tt.difficulty, resp.TotalPoints, 4*tt.points)
		}
	}
}

func TestGenerateAssessment_UnknownSkillFallsBack(t *testing.T) {
	svc := newTestService()

	resp := svc.GenerateAssessment(model.AssessmentRequest{
		UserID:       "u1",
		Skill:        "COBOL",
		Difficulty:   model.DifficultyBeginner,
		NumQuestions: 3,
	})

	if len(resp.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(resp.Questions))
	}
	// 题目内容来自默认技能的题库，而不是占位题
	for _, q := range resp.Questions {
		if strings.HasPrefix(q.QuestionText, "Concept check:") {
			t.Errorf("question %s is a placeholder, want a default-skill template", q.QuestionID)
		}
		if q.Skill != "COBOL" {
			t.Errorf("question %s skill = %q, want requested skill preserved", q.QuestionID, q.Skill)
		}
	}
}

func TestSelectQuestions_EmptyBucketSynthesizesPlaceholders(t *testing.T) {
	rng := seededRNG("fixed-id")

	questions := selectQuestions(rng, nil, model.DifficultyAdvanced, 4, "Rust", "aid", 0)

	if len(questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(questions))
	}
	for i, q := range questions {
		wantID := fmt.Sprintf("aid-q%d", i+1)
		if q.QuestionID != wantID {
			t.Errorf("question %d id = %q, want %q", i, q.QuestionID, wantID)
		}
		if q.Points != 10 {
			t.Errorf("placeholder points = %d, want 10", q.Points)
		}
		if len(q.Options) != 4 || q.Options[3] != "All of the above" {
			t.Errorf("placeholder options = %v, want 4 options ending in 'All of the above'", q.Options)
		}
		if q.CorrectAnswer != "All of the above" {
			t.Errorf("placeholder answer = %q, want 'All of the above'", q.CorrectAnswer)
		}
	}
}

func TestSelectQuestions_OverflowSamplesWithReplacement(t *testing.T) {
	repo := repository.NewTemplateRepository()
	// JavaScript beginner 桶只有 1 道题
	templates := repo.Lookup("JavaScript", model.DifficultyBeginner)
	if len(templates) != 1 {
		t.Fatalf("fixture changed: JavaScript beginner bucket has %d templates", len(templates))
	}

	rng := seededRNG("overflow")
	questions := selectQuestions(rng, templates, model.DifficultyBeginner, 3, "JavaScript", "aid", 0)

	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	for i, q := range questions {
		if q.QuestionText != templates[0].Question {
			t.Errorf("question %d text = %q, want the single bucket template", i, q.QuestionText)
		}
	}
}

func TestSelectQuestions_OffsetNumbering(t *testing.T) {
	repo := repository.NewTemplateRepository()
	rng := seededRNG("offsets")

	questions := selectQuestions(rng, repo.Lookup("Python", model.DifficultyIntermediate), model.DifficultyIntermediate, 5, "Python", "aid", 5)

	for i, q := range questions {
		wantID := fmt.Sprintf("aid-q%d", 5+i+1)
		if q.QuestionID != wantID {
			t.Errorf("question %d id = %q, want %q", i, q.QuestionID, wantID)
		}
	}
}

func TestGenerateMockTest_Composition(t *testing.T) {
	svc := newTestService()

	resp := svc.GenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "Python"})

	if len(resp.Questions) != 25 {
		t.Fatalf("got %d questions, want 25", len(resp.Questions))
	}
	if resp.TimeLimitMinutes != 60 {
		t.Errorf("timeLimitMinutes = %d, want 60", resp.TimeLimitMinutes)
	}

	counts := map[model.QuestionType]int{}
	for _, q := range resp.Questions {
		counts[q.QuestionType]++
	}
	if counts[model.QuestionTypeMultipleChoice] != 15 {
		t.Errorf("multiple_choice count = %d, want 15", counts[model.QuestionTypeMultipleChoice])
	}
	if counts[model.QuestionTypeAptitude] != 5 {
		t.Errorf("aptitude count = %d, want 5", counts[model.QuestionTypeAptitude])
	}
	if counts[model.QuestionTypeCoding] != 5 {
		t.Errorf("coding count = %d, want 5", counts[model.QuestionTypeCoding])
	}

	// ID 布局：q1..q15、apt1..apt5、5 个固定编程题后缀
	aid := resp.AssessmentID
	var wantIDs []string
	for i := 1; i <= 15; i++ {
		wantIDs = append(wantIDs, fmt.Sprintf("%s-q%d", aid, i))
	}
	for i := 1; i <= 5; i++ {
		wantIDs = append(wantIDs, fmt.Sprintf("%s-apt%d", aid, i))
	}
	for _, suffix := range []string{"code-js", "code-py", "code-algo", "code-html", "code-css"} {
		wantIDs = append(wantIDs, fmt.Sprintf("%s-%s", aid, suffix))
	}
	for i, q := range resp.Questions {
		if q.QuestionID != wantIDs[i] {
			t.Errorf("question %d id = %q, want %q", i, q.QuestionID, wantIDs[i])
		}
	}

	// 分段分值：5×10 + 5×20 + 5×30 + 5×5 + [20 20 30 15 15]
	wantCodingPoints := []int{20, 20, 30, 15, 15}
	for i, q := range resp.Questions[20:] {
		if q.Points != wantCodingPoints[i] {
			t.Errorf("coding question %d points = %d, want %d", i, q.Points, wantCodingPoints[i])
		}
	}
	if resp.TotalPoints != 50+100+150+25+100 {
		t.Errorf("totalPoints = %d, want 425", resp.TotalPoints)
	}
}

func TestGenerateMockTest_AlgoChallengeUsesPrimarySkill(t *testing.T) {
	svc := newTestService()

	resp := svc.GenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "React"})

	var algo *model.Question
	for i := range resp.Questions {
		if strings.HasSuffix(resp.Questions[i].QuestionID, "-code-algo") {
			algo = &resp.Questions[i]
		}
	}
	if algo == nil {
		t.Fatal("no -code-algo question in mock test")
	}
	if algo.Skill != "React" {
		t.Errorf("algo challenge skill = %q, want primary skill", algo.Skill)
	}
	if algo.Points != 30 {
		t.Errorf("algo challenge points = %d, want 30", algo.Points)
	}
}

func TestRegenerateMockTest_Reproducible(t *testing.T) {
	svc := newTestService()

	original := svc.GenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "Python"})
	regenerated := svc.RegenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "Python"}, original.AssessmentID)

	if len(regenerated.Questions) != len(original.Questions) {
		t.Fatalf("regenerated %d questions, want %d", len(regenerated.Questions), len(original.Questions))
	}
	for i := range original.Questions {
		o, r := original.Questions[i], regenerated.Questions[i]
		if o.QuestionID != r.QuestionID {
			t.Errorf("question %d id mismatch: %q vs %q", i, o.QuestionID, r.QuestionID)
		}
		if o.Points != r.Points {
			t.Errorf("question %d points mismatch: %d vs %d", i, o.Points, r.Points)
		}
		// 模板路径下种子来自测评 ID，重建结果逐字一致
		if o.QuestionText != r.QuestionText {
			t.Errorf("question %d text mismatch:\n  %q\n  %q", i, o.QuestionText, r.QuestionText)
		}
		if o.CorrectAnswer != r.CorrectAnswer {
			t.Errorf("question %d answer mismatch: %q vs %q", i, o.CorrectAnswer, r.CorrectAnswer)
		}
	}
	if regenerated.TotalPoints != original.TotalPoints {
		t.Errorf("totalPoints mismatch: %d vs %d", regenerated.TotalPoints, original.TotalPoints)
	}
}

func TestRegenerateAssessment_Reproducible(t *testing.T) {
	svc := newTestService()
	req := model.AssessmentRequest{UserID: "u1", Skill: "Python", Difficulty: model.DifficultyAdvanced, NumQuestions: 4}

	original := svc.GenerateAssessment(req)
	regenerated := svc.RegenerateAssessment(req, original.AssessmentID)

	for i := range original.Questions {
		if original.Questions[i].QuestionID != regenerated.Questions[i].QuestionID {
			t.Errorf("question %d id mismatch", i)
		}
		if original.Questions[i].QuestionText != regenerated.Questions[i].QuestionText {
			t.Errorf("question %d text mismatch", i)
		}
	}
}

func TestEvaluate_PerfectSubmission(t *testing.T) {
	svc := newTestService()

	assessment := svc.GenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "Python"})
	result := svc.EvaluateAssessment(correctSubmission(assessment), assessment)

	if result.Percentage != 100.0 {
		t.Errorf("percentage = %v, want 100.0", result.Percentage)
	}
	if !result.Passed {
		t.Error("passed = false, want true")
	}
	if result.ConfidenceLevel != "Excellent" {
		t.Errorf("confidenceLevel = %q, want Excellent", result.ConfidenceLevel)
	}
	if result.Score != result.MaxScore {
		t.Errorf("score = %d, maxScore = %d", result.Score, result.MaxScore)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want none", result.Recommendations)
	}
}

func TestEvaluate_AnswerNormalization(t *testing.T) {
	svc := newTestService()

	assessment := svc.GenerateAssessment(model.AssessmentRequest{
		UserID: "u1", Skill: "Python", Difficulty: model.DifficultyBeginner, NumQuestions: 2,
	})

	answers := make([]model.AnswerSubmission, 0, 2)
	for _, q := range assessment.Questions {
		// 大小写和首尾空白不影响判分
		answers = append(answers, model.AnswerSubmission{
			QuestionID: q.QuestionID,
			UserAnswer: "  " + strings.ToUpper(q.CorrectAnswer) + "  ",
		})
	}
	result := svc.EvaluateAssessment(model.AssessmentSubmission{
		AssessmentID: assessment.AssessmentID, UserID: "u1", Answers: answers,
	}, assessment)

	if result.Percentage != 100.0 {
		t.Errorf("percentage = %v, want 100.0", result.Percentage)
	}
}

func TestEvaluate_EmptySubmission(t *testing.T) {
	svc := newTestService()

	assessment := svc.GenerateMockTest(model.MockTestRequest{UserID: "u1", PrimarySkill: "Python"})
	result := svc.EvaluateAssessment(model.AssessmentSubmission{
		AssessmentID: assessment.AssessmentID,
		UserID:       "u1",
	}, assessment)

	if result.Percentage != 0.0 {
		t.Errorf("percentage = %v, want 0.0", result.Percentage)
	}
	if result.Passed {
		t.Error("passed = true, want false")
	}
	if result.ConfidenceLevel != "Needs Improvement" {
		t.Errorf("confidenceLevel = %q, want Needs Improvement", result.ConfidenceLevel)
	}
	if len(result.Feedback) != len(assessment.Questions) {
		t.Errorf("feedback lines = %d, want one per question (%d)", len(result.Feedback), len(assessment.Questions))
	}
	for i, line := range result.Feedback {
		if !strings.HasPrefix(line, "✗") {
			t.Errorf("feedback %d = %q, want a negative line", i, line)
		}
	}
}

func TestEvaluate_ConfidenceBoundaries(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name       string
		points     []int // 第一题答对，第二题答错
		percentage float64
		confidence string
		passed     bool
	}{
		{"59.9", []int{599, 401}, 59.9, "Needs Improvement", false},
		{"60.0", []int{600, 400}, 60.0, "Good", true},
		{"79.9", []int{799, 201}, 79.9, "Good", true},
		{"80.0", []int{800, 200}, 80.0, "Excellent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment := &model.AssessmentResponse{
				AssessmentID: "aid",
				Skill:        "Python",
				Questions: []model.Question{
					{
						QuestionID:    "aid-q1",
						Skill:         "Python",
						QuestionType:  model.QuestionTypeMultipleChoice,
						Difficulty:    model.DifficultyIntermediate,
						CorrectAnswer: "right",
						Points:        tt.points[0],
					},
					{
						QuestionID:    "aid-q2",
						Skill:         "Python",
						QuestionType:  model.QuestionTypeMultipleChoice,
						Difficulty:    model.DifficultyIntermediate,
						CorrectAnswer: "right",
						Points:        tt.points[1],
					},
				},
				TotalPoints: tt.points[0] + tt.points[1],
			}

			result := svc.EvaluateAssessment(model.AssessmentSubmission{
				AssessmentID: "aid",
				UserID:       "u1",
				Answers: []model.AnswerSubmission{
					{QuestionID: "aid-q1", UserAnswer: "right"},
					{QuestionID: "aid-q2", UserAnswer: "wrong"},
				},
			}, assessment)

			if result.Percentage != tt.percentage {
				t.Errorf("percentage = %v, want %v", result.Percentage, tt.percentage)
			}
			if result.ConfidenceLevel != tt.confidence {
				t.Errorf("confidenceLevel = %q, want %q", result.ConfidenceLevel, tt.confidence)
			}
			if result.Passed != tt.passed {
				t.Errorf("passed = %v, want %v", result.Passed, tt.passed)
			}
		})
	}
}

func TestEvaluate_DuplicateAnswersOverwrite(t *testing.T) {
	svc := newTestService()

	assessment := &model.AssessmentResponse{
		AssessmentID: "aid",
		Skill:        "Python",
		Questions: []model.Question{
			{
				QuestionID:    "aid-q1",
				Skill:         "Python",
				QuestionType:  model.QuestionTypeMultipleChoice,
				Difficulty:    model.DifficultyIntermediate,
				CorrectAnswer: "right",
				Points:        20,
			},
		},
		TotalPoints: 20,
	}

	result := svc.EvaluateAssessment(model.AssessmentSubmission{
		AssessmentID: "aid",
		UserID:       "u1",
		Answers: []model.AnswerSubmission{
			{QuestionID: "aid-q1", UserAnswer: "wrong"},
			{QuestionID: "aid-q1", UserAnswer: "right"},
		},
	}, assessment)

	if result.Score != 20 {
		t.Errorf("score = %d, want 20 (last answer wins)", result.Score)
	}
}

func TestEvaluate_UnmatchedSubmissionIgnored(t *testing.T) {
	svc := newTestService()

	assessment := svc.GenerateAssessment(model.AssessmentRequest{
		UserID: "u1", Skill: "Python", Difficulty: model.DifficultyBeginner, NumQuestions: 2,
	})

	submission := correctSubmission(assessment)
	submission.Answers = append(submission.Answers, model.AnswerSubmission{
		QuestionID: "someone-elses-q99",
		UserAnswer: "whatever",
	})

	result := svc.EvaluateAssessment(submission, assessment)
	if result.Percentage != 100.0 {
		t.Errorf("percentage = %v, want 100.0 (extra answers ignored)", result.Percentage)
	}
	if len(result.Feedback) != 2 {
		t.Errorf("feedback lines = %d, want 2", len(result.Feedback))
	}
}

func TestEvaluate_CodingLengthHeuristic(t *testing.T) {
	svc := newTestService()

	assessment := &model.AssessmentResponse{
		AssessmentID: "aid",
		Skill:        "Python",
		Questions: []model.Question{
			{
				QuestionID:    "aid-code-py",
				Skill:         "Python",
				QuestionType:  model.QuestionTypeCoding,
				Difficulty:    model.DifficultyIntermediate,
				CorrectAnswer: "N/A",
				Points:        20,
			},
		},
		TotalPoints: 20,
	}

	tests := []struct {
		name   string
		answer string
		score  int
	}{
		{"empty", "", 0},
		{"exactly 20 runes", strings.Repeat("x", 20), 0},
		{"21 runes", strings.Repeat("x", 21), 20},
		{"whitespace padding does not count", "   " + strings.Repeat("x", 20) + "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.EvaluateAssessment(model.AssessmentSubmission{
				AssessmentID: "aid",
				UserID:       "u1",
				Answers:      []model.AnswerSubmission{{QuestionID: "aid-code-py", UserAnswer: tt.answer}},
			}, assessment)

			if result.Score != tt.score {
				t.Errorf("score = %d, want %d", result.Score, tt.score)
			}
			if tt.score == 0 && len(result.Recommendations) == 0 {
				t.Error("missing practice recommendation for incomplete coding task")
			}
		})
	}
}

func TestEvaluate_BeginnerMissRecommendationDeduplicated(t *testing.T) {
	svc := newTestService()

	assessment := svc.GenerateAssessment(model.AssessmentRequest{
		UserID: "u1", Skill: "Python", Difficulty: model.DifficultyBeginner, NumQuestions: 4,
	})

	result := svc.EvaluateAssessment(model.AssessmentSubmission{
		AssessmentID: assessment.AssessmentID,
		UserID:       "u1",
	}, assessment)

	want := "Review basics of Python"
	if len(result.Recommendations) != 1 || result.Recommendations[0] != want {
		t.Errorf("recommendations = %v, want exactly [%q]", result.Recommendations, want)
	}
}
