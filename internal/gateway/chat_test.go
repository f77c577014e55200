package gateway_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifai/unifai/internal/gateway"
)

func TestDecodeChatRequestErrors(t *testing.T) {
	tooMany := "[" + strings.TrimSuffix(strings.Repeat(`{"role":"user","content":"x"},`, 51), ",") + "]"
	longContent := strings.Repeat("a", 5001)
	longContext := strings.Repeat("m", 100)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{`, "Invalid JSON body"},
		{"array body", `[]`, "Request body must be an object"},
		{"null body", `null`, "Request body must be an object"},
		{"missing messages", `{}`, "Messages must be an array"},
		{"messages object", `{"messages":{}}`, "Messages must be an array"},
		{"empty messages", `{"messages":[]}`, "Messages array cannot be empty"},
		{"too many", `{"messages":` + tooMany + `}`, "Too many messages. Maximum allowed: 50"},
		{"message not object", `{"messages":["hi"]}`, "Invalid message at index 0"},
		{"missing role", `{"messages":[{"content":"hi"}]}`, "Invalid role at message 0"},
		{"numeric role", `{"messages":[{"role":1,"content":"hi"}]}`, "Invalid role at message 0"},
		{"bad role", `{"messages":[{"role":"user","content":"ok"},{"role":"tool","content":"hi"}]}`, "Invalid role value at message 1"},
		{"empty content", `{"messages":[{"role":"user","content":""}]}`, "Invalid content at message 0"},
		{"long content", `{"messages":[{"role":"user","content":"` + longContent + `"}]}`, "Message 0 exceeds maximum length of 5000 characters"},
		{"context string", `{"messages":[{"role":"user","content":"hi"}],"context":"x"}`, "Context must be an object"},
		{"module too long", `{"messages":[{"role":"user","content":"hi"}],"context":{"currentModule":"` + longContext + `x"}}`, "Invalid currentModule in context"},
		{"module null", `{"messages":[{"role":"user","content":"hi"}],"context":{"currentModule":null}}`, "Invalid currentModule in context"},
		{"prediction null", `{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":null}}`, "Invalid lastPrediction in context"},
		{"module type number", `{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":{"moduleType":3}}}`, "Invalid moduleType in lastPrediction"},
		{"prediction too long", `{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":{"prediction":"` + strings.Repeat("p", 501) + `"}}}`, "Invalid prediction in lastPrediction"},
		{"confidence over 100", `{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":{"confidence":100.5}}}`, "Invalid confidence in lastPrediction"},
		{"confidence string", `{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":{"confidence":"90"}}}`, "Invalid confidence in lastPrediction"},
		{"context too large", `{"messages":[{"role":"user","content":"hi"}],"context":{"notes":"` + strings.Repeat("n", 2000) + `"}}`, "Context exceeds maximum size of 2000 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.DecodeChatRequest([]byte(tt.body))
			var reqErr *gateway.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.want, reqErr.Reason)
		})
	}
}

func TestDecodeChatRequest(t *testing.T) {
	body := `{
		"messages": [
			{"role": "system", "content": "be brief"},
			{"role": "user", "content": "Explain AQI"}
		],
		"context": {
			"currentModule": "Environment & Crop AI",
			"lastPrediction": {"moduleType": "environment_air_quality", "prediction": "Moderate", "confidence": 88}
		}
	}`
	req, err := gateway.DecodeChatRequest([]byte(body))
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "Explain AQI", req.Messages[1].Content)
	require.NotNil(t, req.Context)
	assert.Equal(t, "Environment & Crop AI", req.Context.CurrentModule)
	require.NotNil(t, req.Context.LastPrediction)
	require.NotNil(t, req.Context.LastPrediction.Confidence)
	assert.Equal(t, 88.0, *req.Context.LastPrediction.Confidence)
}

func TestDecodeChatRequestBoundaries(t *testing.T) {
	fifty := make([]string, 50)
	for i := range fifty {
		fifty[i] = `{"role":"user","content":"x"}`
	}
	body := fmt.Sprintf(`{"messages":[%s],"context":null}`, strings.Join(fifty, ","))
	req, err := gateway.DecodeChatRequest([]byte(body))
	require.NoError(t, err)
	assert.Len(t, req.Messages, 50)
	assert.Nil(t, req.Context)

	// 5000 UTF-16 units of astral characters is 2500 emoji.
	emoji := strings.Repeat("😀", 2500)
	_, err = gateway.DecodeChatRequest([]byte(`{"messages":[{"role":"user","content":"` + emoji + `"}]}`))
	assert.NoError(t, err)
	_, err = gateway.DecodeChatRequest([]byte(`{"messages":[{"role":"user","content":"` + emoji + `a"}]}`))
	assert.Error(t, err)

	_, err = gateway.DecodeChatRequest([]byte(`{"messages":[{"role":"user","content":"hi"}],"context":{"lastPrediction":{"confidence":0}}}`))
	assert.NoError(t, err)
}

func TestChatRequestValidate(t *testing.T) {
	big := 101.0
	tests := []struct {
		name string
		req  gateway.ChatRequest
		want string
	}{
		{"no messages", gateway.ChatRequest{}, "Messages array cannot be empty"},
		{"empty role", gateway.ChatRequest{Messages: []gateway.Message{{Content: "hi"}}}, "Invalid role at message 0"},
		{"unknown role", gateway.ChatRequest{Messages: []gateway.Message{{Role: "bot", Content: "hi"}}}, "Invalid role value at message 0"},
		{"confidence", gateway.ChatRequest{
			Messages: []gateway.Message{{Role: "user", Content: "hi"}},
			Context:  &gateway.ChatContext{LastPrediction: &gateway.LastPrediction{Confidence: &big}},
		}, "Invalid confidence in lastPrediction"},
		{"context size", gateway.ChatRequest{
			Messages: []gateway.Message{{Role: "user", Content: "hi"}},
			Context: &gateway.ChatContext{
				CurrentModule:  "m",
				LastPrediction: &gateway.LastPrediction{Prediction: strings.Repeat("p", 500), ModuleType: strings.Repeat("t", 100)},
			},
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}
