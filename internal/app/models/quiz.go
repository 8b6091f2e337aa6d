package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TestVersions are the questionnaire variants offered on the selection page.
var TestVersions = []string{"简洁版", "完整版"}

// Envelope is the usual {code, msg, data} wrapper of backend answers. Pages
// use it for display only; bodies without it are taken as the payload.
type Envelope struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Payload returns the data inside the envelope, or body itself when it is not
// wrapped.
func Payload(body []byte) json.RawMessage {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data
	}
	return body
}

// LoginToken extracts the token from a login answer: data.token, data as a
// bare string, or a top-level token field.
func LoginToken(body []byte) (string, error) {
	payload := Payload(body)

	var s string
	if err := json.Unmarshal(payload, &s); err == nil && s != "" {
		return s, nil
	}

	var obj struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil && obj.Token != "" {
		return obj.Token, nil
	}
	if err := json.Unmarshal(body, &obj); err == nil && obj.Token != "" {
		return obj.Token, nil
	}

	return "", ErrNoToken
}

type Option struct {
	Key  string
	Text string
}

type Question struct {
	ID      string
	Text    string
	Options []Option
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	q.ID = firstString(raw, "id", "questionId", "qid")
	q.Text = firstString(raw, "content", "question", "title", "text")

	opts, ok := raw["options"]
	if !ok {
		return nil
	}

	var plain []string
	if err := json.Unmarshal(opts, &plain); err == nil {
		for i, text := range plain {
			q.Options = append(q.Options, Option{Key: optionKey(i), Text: text})
		}
		return nil
	}

	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(opts, &objects); err != nil {
		return fmt.Errorf("question %s: options: %w", q.ID, err)
	}
	for i, o := range objects {
		key := firstString(o, "key", "value", "label", "id")
		if key == "" {
			key = optionKey(i)
		}
		q.Options = append(q.Options, Option{Key: key, Text: firstString(o, "text", "content", "label")})
	}
	return nil
}

// ParseQuestions reads the question list out of a questions answer. The list
// may be the payload itself or sit under "questions" or "list".
func ParseQuestions(body []byte) ([]Question, error) {
	payload := Payload(body)

	var list []Question
	if err := json.Unmarshal(payload, &list); err == nil {
		if len(list) == 0 {
			return nil, ErrNoQuestions
		}
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	for _, key := range []string{"questions", "list"} {
		if inner, ok := wrapped[key]; ok {
			if err := json.Unmarshal(inner, &list); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
			if len(list) == 0 {
				return nil, ErrNoQuestions
			}
			return list, nil
		}
	}
	return nil, ErrNoQuestions
}

// Answer is one chosen option of a submission.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Submission is what the test paper page posts to /test/submit.
type Submission struct {
	Version string   `json:"version"`
	Answers []Answer `json:"answers"`
}

// SubmittedTestID reads the id of a stored submission: data.testId, data.id,
// or data as a bare string or number.
func SubmittedTestID(body []byte) (string, error) {
	payload := Payload(body)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err == nil {
		if id := firstString(obj, "testId", "id", "resultId"); id != "" {
			return id, nil
		}
		return "", ErrUnknownTestID
	}

	if id := scalarString(payload); id != "" {
		return id, nil
	}
	return "", ErrUnknownTestID
}

// Field is one displayed key/value pair.
type Field struct {
	Key   string
	Value string
}

// Fields flattens a JSON object payload into sorted key/value pairs. Nested
// values are shown as compact JSON. Anything but an object becomes a single
// field named fallbackKey.
func Fields(body []byte, fallbackKey string) []Field {
	payload := Payload(body)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return []Field{{Key: fallbackKey, Value: displayValue(payload)}}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: displayValue(obj[k])})
	}
	return fields
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s := scalarString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func scalarString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}

func displayValue(v json.RawMessage) string {
	if s := scalarString(v); s != "" {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return strings.TrimSpace(string(v))
	}
	return buf.String()
}

func optionKey(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

// TokenInfo is what the home page shows about the auth token when it is a JWT.
type TokenInfo struct {
	Subject   string
	Username  string
	ExpiresAt time.Time
	Expired   bool
}

type LoginForm struct {
	Username string
	Failed   bool
}

type HomeView struct {
	Profile []Field
	Token   *TokenInfo
}

type TestPaper struct {
	Version   string
	Questions []Question
}

type ResultView struct {
	ID     string
	Fields []Field
}
