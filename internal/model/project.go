package model

import (
	"encoding/json"
	"time"

	"github.com/Harshul8824/BIM/internal/validation"
)

const EntityProject = "Project"

// 项目状态
const (
	StatusPending    = "pending"
	StatusInProgress = "in progress"
	StatusCompleted  = "completed"
)

// Project 字段名
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldStartDate       = "startDate"
	FieldEndDate         = "endDate"
	FieldStatus          = "status"
	FieldClient          = "client"
	FieldCost            = "cost"
	FieldPlannedLabour   = "plannedLabour"
	FieldPlannedMaterial = "plannedMaterial"
)

type Project struct {
	ID              string     `json:"id" bson:"_id"`
	Title           string     `json:"title" bson:"title"`
	Description     string     `json:"description" bson:"description"`
	StartDate       time.Time  `json:"startDate" bson:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Status          string     `json:"status" bson:"status"`
	Client          string     `json:"client" bson:"client"`
	Manager         string     `json:"manager" bson:"manager"`
	Cost            float64    `json:"cost" bson:"cost"`
	PlannedLabour   float64    `json:"plannedLabour" bson:"plannedLabour"`
	PlannedMaterial any        `json:"plannedMaterial,omitempty" bson:"plannedMaterial,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ProjectSchema 项目校验规则；startDate 的默认值在创建时取当前时间
func ProjectSchema(now func() time.Time) *validation.Schema {
	return validation.MustCompile(EntityProject,
		validation.Field{Name: FieldTitle, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please provide a project title"}},
		validation.Field{Name: FieldDescription, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please provide a project description"}},
		validation.Field{Name: FieldStartDate, Rule: validation.Rule{Type: validation.Date, Default: func() any { return now() }}},
		validation.Field{Name: FieldEndDate, Rule: validation.Rule{Type: validation.Date}},
		validation.Field{Name: FieldStatus, Rule: validation.Rule{
			Type:    validation.String,
			Enum:    []string{StatusPending, StatusInProgress, StatusCompleted},
			Default: func() any { return StatusPending },
		}},
		validation.Field{Name: FieldClient, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please provide a client"}},
		validation.Field{Name: FieldManager, Rule: validation.Rule{Type: validation.String, Required: true, Message: "Please provide a manager"}},
		validation.Field{Name: FieldCost, Rule: validation.Rule{Type: validation.Number, Required: true}},
		validation.Field{Name: FieldPlannedLabour, Rule: validation.Rule{Type: validation.Number, Required: true}},
		validation.Field{Name: FieldPlannedMaterial},
	)
}

// ProjectInput 创建/更新请求体
type ProjectInput struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	StartDate       *Date           `json:"startDate"`
	EndDate         *Date           `json:"endDate"`
	Status          *string         `json:"status"`
	Client          *string         `json:"client"`
	Manager         *string         `json:"manager"`
	Cost            *float64        `json:"cost"`
	PlannedLabour   *float64        `json:"plannedLabour"`
	PlannedMaterial json.RawMessage `json:"plannedMaterial"`
}

func (in ProjectInput) Document() (validation.Document, error) {
	doc := validation.Document{}
	putString(doc, FieldTitle, in.Title)
	putString(doc, FieldDescription, in.Description)
	// 空的 startDate 视为未提供，创建时取默认值
	if in.StartDate != nil && !in.StartDate.IsZero() {
		doc[FieldStartDate] = in.StartDate.Time
	}
	putDate(doc, FieldEndDate, in.EndDate)
	putString(doc, FieldStatus, in.Status)
	putString(doc, FieldClient, in.Client)
	putString(doc, FieldManager, in.Manager)
	putFloat(doc, FieldCost, in.Cost)
	putFloat(doc, FieldPlannedLabour, in.PlannedLabour)
	if len(in.PlannedMaterial) > 0 {
		var material any
		if err := json.Unmarshal(in.PlannedMaterial, &material); err != nil {
			return nil, err
		}
		doc[FieldPlannedMaterial] = material
	}
	return doc, nil
}

func NewProject(doc validation.Document) *Project {
	p := &Project{}
	p.Apply(doc)
	return p
}

func (p *Project) Apply(doc validation.Document) {
	for key, value := range doc {
		switch key {
		case FieldTitle:
			p.Title = doc.String(key)
		case FieldDescription:
			p.Description = doc.String(key)
		case FieldStartDate:
			p.StartDate = doc.Time(key)
		case FieldEndDate:
			p.EndDate = doc.TimePtr(key)
		case FieldStatus:
			p.Status = doc.String(key)
		case FieldClient:
			p.Client = doc.String(key)
		case FieldManager:
			p.Manager = doc.String(key)
		case FieldCost:
			p.Cost = doc.Float(key)
		case FieldPlannedLabour:
			p.PlannedLabour = doc.Float(key)
		case FieldPlannedMaterial:
			p.PlannedMaterial = value
		}
	}
}

func (p *Project) Clone() *Project {
	c := *p
	if p.EndDate != nil {
		end := *p.EndDate
		c.EndDate = &end
	}
	return &c
}
