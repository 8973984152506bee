package model

import (
	"slices"
	"time"

	"github.com/Harshul8824/BIM/internal/validation"
	"github.com/Harshul8824/BIM/pkg/rbac"
)

const EntityUser = "User"

// User 字段名（JSON / 文档键）
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldClients  = "clients"
	FieldManager  = "manager"
)

type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	Clients   []string  `json:"clients" bson:"clients"`
	Manager   string    `json:"manager,omitempty" bson:"manager,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserSchema 用户校验规则
var UserSchema = validation.MustCompile(EntityUser,
	validation.Field{Name: FieldName, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please tell us your name!"}},
	validation.Field{Name: FieldEmail, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please tell us your email!"}},
	validation.Field{Name: FieldPassword, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please tell us your password!"}},
	validation.Field{Name: FieldRole, Rule: validation.Rule{
		Type:    validation.String,
		Enum:    rbac.Roles(),
		Default: func() any { return rbac.RoleCustomer },
	}},
	validation.Field{Name: FieldClients, Rule: validation.Rule{Type: validation.IDs}},
	validation.Field{Name: FieldManager, Rule: validation.Rule{Type: validation.String}},
)

// UserInput is the request body for create and update. Nil fields were not sent.
type UserInput struct {
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Password *string   `json:"password"`
	Role     *string   `json:"role"`
	Clients  *[]string `json:"clients"`
	Manager  *string   `json:"manager"`
}

// Document 只包含请求中出现的字段
func (in UserInput) Document() validation.Document {
	doc := validation.Document{}
	putString(doc, FieldName, in.Name)
	putString(doc, FieldEmail, in.Email)
	putString(doc, FieldPassword, in.Password)
	putString(doc, FieldRole, in.Role)
	putString(doc, FieldManager, in.Manager)
	if in.Clients != nil {
		doc[FieldClients] = slices.Clone(*in.Clients)
	}
	return doc
}

// NewUser builds a record from a validated, defaulted document.
func NewUser(doc validation.Document) *User {
	u := &User{Clients: []string{}}
	u.Apply(doc)
	return u
}

// Apply 将文档中出现的字段写入记录
func (u *User) Apply(doc validation.Document) {
	for key := range doc {
		switch key {
		case FieldName:
			u.Name = doc.String(key)
		case FieldEmail:
			u.Email = doc.String(key)
		case FieldPassword:
			u.Password = doc.String(key)
		case FieldRole:
			u.Role = doc.String(key)
		case FieldClients:
			u.Clients = slices.Clone(doc.Strings(key))
			if u.Clients == nil {
				u.Clients = []string{}
			}
		case FieldManager:
			u.Manager = doc.String(key)
		}
	}
}

// HasClient 客户是否已在经理名下
func (u *User) HasClient(clientID string) bool {
	return slices.Contains(u.Clients, clientID)
}

// Clone 深拷贝，内存存储返回副本避免外部修改
func (u *User) Clone() *User {
	c := *u
	c.Clients = slices.Clone(u.Clients)
	if c.Clients == nil {
		c.Clients = []string{}
	}
	return &c
}

// UserFilter 列表过滤条件
type UserFilter struct {
	Role string
}

func (f UserFilter) Match(u *User) bool {
	return f.Role == "" || u.Role == f.Role
}

func putString(doc validation.Document, key string, v *string) {
	if v != nil {
		doc[key] = *v
	}
}

func putFloat(doc validation.Document, key string, v *float64) {
	if v != nil {
		doc[key] = *v
	}
}

func putDate(doc validation.Document, key string, v *Date) {
	if v != nil {
		doc[key] = v.Time
	}
}
