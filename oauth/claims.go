package oauth

import (
	"fmt"

	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/services"
)

// Extract normalizes a provider-specific user-info payload into the
// reconciler's input. Each provider nests its attributes differently:
// google returns a flat document, kakao nests under kakao_account and
// properties, naver wraps everything in a response envelope.
func Extract(provider models.Provider, attrs map[string]interface{}) (services.ExternalSubject, error) {
	switch provider {
	case models.ProviderGoogle:
		return extractGoogle(attrs)
	case models.ProviderKakao:
		return extractKakao(attrs)
	case models.ProviderNaver:
		return extractNaver(attrs)
	default:
		return services.ExternalSubject{}, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func extractGoogle(attrs map[string]interface{}) (services.ExternalSubject, error) {
	subjectID := stringAttr(attrs, "id")
	if subjectID == "" {
		subjectID = stringAttr(attrs, "sub")
	}
	email := stringAttr(attrs, "email")
	if subjectID == "" || email == "" {
		return services.ExternalSubject{}, fmt.Errorf("google payload missing subject or email")
	}
	return services.ExternalSubject{
		Provider:    models.ProviderGoogle,
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: stringAttr(attrs, "name"),
	}, nil
}

func extractKakao(attrs map[string]interface{}) (services.ExternalSubject, error) {
	// Kakao's numeric id decodes as float64 through encoding/json.
	var subjectID string
	switch id := attrs["id"].(type) {
	case float64:
		subjectID = fmt.Sprintf("%.0f", id)
	case string:
		subjectID = id
	}

	kakaoAccount, _ := attrs["kakao_account"].(map[string]interface{})
	email := stringAttr(kakaoAccount, "email")
	if subjectID == "" || email == "" {
		return services.ExternalSubject{}, fmt.Errorf("kakao payload missing subject or email")
	}

	properties, _ := attrs["properties"].(map[string]interface{})
	return services.ExternalSubject{
		Provider:    models.ProviderKakao,
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: stringAttr(properties, "nickname"),
	}, nil
}

func extractNaver(attrs map[string]interface{}) (services.ExternalSubject, error) {
	response, _ := attrs["response"].(map[string]interface{})
	subjectID := stringAttr(response, "id")
	email := stringAttr(response, "email")
	if subjectID == "" || email == "" {
		return services.ExternalSubject{}, fmt.Errorf("naver payload missing subject or email")
	}
	return services.ExternalSubject{
		Provider:    models.ProviderNaver,
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: stringAttr(response, "nickname"),
	}, nil
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	s, _ := attrs[key].(string)
	return s
}
