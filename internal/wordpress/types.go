package wordpress

import (
	"encoding/json"

	"pken.app/survey-gateway/internal/survey"
)

type User struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastKana  *string `json:"last_kana,omitempty"`
	FirstKana *string `json:"first_kana,omitempty"`
	Email     *string `json:"email,omitempty"`
	LineID    string  `json:"line_id"`
}

// RegisterRequest keeps the camelCase keys the WordPress plugin expects.
type RegisterRequest struct {
	Grade         int    `json:"grade"`
	Class         int    `json:"class"`
	LastName      string `json:"lastName"`
	FirstName     string `json:"firstName"`
	LastNameKana  string `json:"lastNameKana"`
	FirstNameKana string `json:"firstNameKana"`
	Email         string `json:"email"`
	LineID        string `json:"line_id"`
}

type SurveyGroup struct {
	Title string `json:"fm_title"`
	Text  string `json:"fm_text"`
}

type SurveyFormField struct {
	Label string  `json:"fm_label"`
	Type  string  `json:"fm_type"`
	Value *string `json:"fm_value,omitempty"`
}

type SurveyPost struct {
	ID int64 `json:"ID"`
}

// SurveyReply is the caller's stored reply row on a survey detail.
type SurveyReply struct {
	FmReID  survey.ReplyID    `json:"fm_re_id"`
	UserID  survey.NullString `json:"user_id"`
	PostID  survey.NullString `json:"post_id"`
	Answer  survey.NullString `json:"answer"`
	Str     survey.NullString `json:"str"`
	History json.RawMessage   `json:"history,omitempty"`
	Created survey.NullString `json:"created"`
	Updated survey.NullString `json:"updated"`
}

type SurveyDetail struct {
	Group   *SurveyGroup      `json:"group,omitempty"`
	Date    *string           `json:"date,omitempty"`
	Form    []SurveyFormField `json:"form,omitempty"`
	Post    *SurveyPost       `json:"post,omitempty"`
	Content *string           `json:"content,omitempty"`
	MyReply *SurveyReply      `json:"my_reply,omitempty"`
}
