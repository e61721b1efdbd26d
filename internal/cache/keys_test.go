package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "submission",
			objectType:  "quiz",
			identifier:  "intro-go",
			paramsKey:   nil,
			expectedKey: "quizpipe:submission:quiz:intro-go",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "submission",
			objectType:  "quiz",
			identifier:  "intro-go",
			paramsKey:   []string{},
			expectedKey: "quizpipe:submission:quiz:intro-go",
		},
		{
			name:        "with one paramsKey",
			serviceName: "adaptive",
			objectType:  "performance",
			identifier:  "u1",
			paramsKey:   []string{"mcq_quiz-1"},
			expectedKey: "quizpipe:adaptive:performance:u1:mcq_quiz-1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "progress",
			objectType:  "course_link",
			identifier:  "xyz",
			paramsKey:   []string{"param1", "param2", "param3"},
			expectedKey: "quizpipe:progress:course_link:xyz:param1_param2_param3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestDomainKeys(t *testing.T) {
	if got := QuizKey("intro-go"); got != "quizpipe:submission:quiz:intro-go" {
		t.Errorf("QuizKey() = %v", got)
	}
	if got := CourseLinkKey("intro-go"); got != "quizpipe:progress:course_link:intro-go" {
		t.Errorf("CourseLinkKey() = %v", got)
	}
	if got := PerformanceKey("u1", "mcq_intro-go"); got != "quizpipe:adaptive:performance:u1:mcq_intro-go" {
		t.Errorf("PerformanceKey() = %v", got)
	}
}
