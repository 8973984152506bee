package event

// 事件类型，同时作为 routing key
const (
	UserCreated     = "user.created"
	UserUpdated     = "user.updated"
	UserDeleted     = "user.deleted"
	UserClientAdded = "user.client_added"

	ProjectCreated = "project.created"
	ProjectUpdated = "project.updated"
	ProjectDeleted = "project.deleted"

	ProgressCreated = "progress.created"
	ProgressUpdated = "progress.updated"
	ProgressDeleted = "progress.deleted"

	ManagerRequestSent = "manager_request.sent"
)

// EntityPayload 实体变更事件
type EntityPayload struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields,omitempty"`
}

// ClientAddedPayload 客户加入经理名下
type ClientAddedPayload struct {
	ManagerID string `json:"manager_id"`
	ClientID  string `json:"client_id"`
}

// ManagerRequestPayload 经理请求邮件已发出
type ManagerRequestPayload struct {
	ClientID  string `json:"client_id"`
	ManagerID string `json:"manager_id"`
	Subject   string `json:"subject"`
}
