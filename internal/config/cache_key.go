package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SurveyDefinitionKey returns the cache key for a survey's JSON definition
func (r *CacheKeyStruct) SurveyDefinitionKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:definition", surveyID)
}

// AnswerSessionKey returns the cache key for an answer session snapshot
func (r *CacheKeyStruct) AnswerSessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

// AnswerSubmitLockKey returns the key guarding a session's in-flight submission
func (r *CacheKeyStruct) AnswerSubmitLockKey(sessionID string) string {
	return fmt.Sprintf("session:%s:submit_lock", sessionID)
}

var CacheKey = NewCacheKeyStruct()
