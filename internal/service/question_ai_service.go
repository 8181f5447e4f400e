package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"skillverify_backend/internal/config"
	"skillverify_backend/internal/util"
	"strings"
)

// QuestionAIService 调用 OpenAI 兼容接口生成选择题。
// 未配置 API Key 时整个生成路径被跳过，由模板题库兜底。
type QuestionAIService struct {
	config config.AIConfig
	client *http.Client
}

func NewQuestionAIService(cfg config.AIConfig) *QuestionAIService {
	return &QuestionAIService{
		config: cfg,
		client: &http.Client{},
	}
}

func (s *QuestionAIService) Enabled() bool {
	return s.config.APIKey != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratedQuestion 提供方返回的题目结构，字段名是提示词里约定的 JSON 契约
type GeneratedQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Type          string   `json:"type"`
	Points        int      `json:"points"`
}

type generatedQuestionSet struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// GenerateMockQuestions 请求 5 初级 + 5 中级 + 5 高级 + 5 能力题。
// 任何失败（网络、状态码、JSON 解析、字段缺失）都返回 error，
// 由调用方决定回退，不向外暴露
func (s *QuestionAIService) GenerateMockQuestions(skill string) ([]GeneratedQuestion, error) {
	if !s.Enabled() {
		return nil, util.ErrAIProviderDisabled
	}

	prompt := fmt.Sprintf(`Generate a technical skill assessment for %s.
Return a JSON object with a list of 'questions'.

Structure the test with exactly:
- 5 Beginner questions (Multiple Choice)
- 5 Intermediate questions (Multiple Choice)
- 5 Advanced questions (Multiple Choice)
- 5 Aptitude/Logic questions (Multiple Choice)

Do NOT generate coding questions.

Format for each question:
{
    "question_text": "...",
    "options": ["A", "B", "C", "D"],
    "correct_answer": "...",
    "explanation": "...",
    "difficulty": "beginner"|"intermediate"|"advanced",
    "type": "multiple_choice"|"aptitude",
    "points": 10
}`, skill)

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: "You are a senior technical interviewer. Generate valid JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.7,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("AI returned no choices")
	}

	return parseGeneratedQuestions(result.Choices[0].Message.Content)
}

func parseGeneratedQuestions(content string) ([]GeneratedQuestion, error) {
	content = stripCodeFence(content)

	var set generatedQuestionSet
	if err := json.Unmarshal([]byte(content), &set); err != nil {
		return nil, fmt.Errorf("malformed AI response: %w", err)
	}
	if len(set.Questions) == 0 {
		return nil, fmt.Errorf("AI response contains no questions")
	}

	for i, q := range set.Questions {
		if q.QuestionText == "" || q.CorrectAnswer == "" || len(q.Options) == 0 {
			return nil, fmt.Errorf("AI question %d is missing required fields", i+1)
		}
	}
	return set.Questions, nil
}

// 部分模型会无视指令把 JSON 包在 Markdown 代码块里
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
