package cache

import "strings"

const (
	GlobalKeyPrefix = "quizpipe"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizKey addresses a quiz-with-questions lookup in the in-process cache.
func QuizKey(slug string) string {
	return GenerateCacheKey("submission", "quiz", slug)
}

// CourseLinkKey addresses a quiz to course association in the in-process cache.
func CourseLinkKey(slug string) string {
	return GenerateCacheKey("progress", "course_link", slug)
}

// PerformanceKey addresses the per-user, per-topic adaptive hash in redis.
func PerformanceKey(userID, topic string) string {
	return GenerateCacheKey("adaptive", "performance", userID, topic)
}
