package models

import "time"

// Actions recorded in user logs.
const (
	LogActionCadastroProponente = "cadastro_proponente"
	LogActionCriarProjeto       = "criar_projeto"
	LogActionEnviarProjeto      = "enviar_projeto"
	LogActionUploadDocumento    = "upload_documento"
	LogActionAvaliarProjeto     = "avaliar_projeto"
	LogActionDecidirProjeto     = "decidir_projeto"
)

// LogEntry is one action in a user's log.
type LogEntry struct {
	Action    string            `bson:"action" json:"action" binding:"required"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Filename  string            `bson:"filename,omitempty" json:"filename,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// UserLog is the append-only action history of one user, keyed by e-mail.
type UserLog struct {
	User      string     `bson:"_id" json:"user"`
	Entries   []LogEntry `bson:"entries" json:"entries"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// PaginatedUserLogs is a page of user logs.
type PaginatedUserLogs struct {
	Data       []UserLog  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
