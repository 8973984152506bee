package model

import (
	"time"

	"github.com/Harshul8824/BIM/internal/validation"
)

const EntityProgress = "Progress"

// Progress 字段名
const (
	FieldProject                 = "project"
	FieldFiveDayCost             = "fiveDayCost"
	FieldLaboursWorked           = "laboursWorked"
	FieldActualMaterialUsedToday = "actualMaterialUsedToday"
	FieldWorkCompletedToday      = "workCompletedToday"
	FieldTotalWorkCompleted      = "totalWorkCompleted"
	FieldExternalDelay           = "externalDelay"
	FieldInternalDelay           = "internalDelay"
	FieldMaterialCostInDays      = "materialCostInDays"
)

// Progress is one reporting period of a project.
type Progress struct {
	ID          string    `json:"id" bson:"_id"`
	Project     string    `json:"project" bson:"project"`
	Client      string    `json:"client" bson:"client"`
	Manager     string    `json:"manager" bson:"manager"`
	Description string    `json:"description" bson:"description"`
	StartDate   time.Time `json:"startDate" bson:"startDate"`
	EndDate     time.Time `json:"endDate" bson:"endDate"`

	FiveDayCost             float64 `json:"fiveDayCost" bson:"fiveDayCost"`
	LaboursWorked           float64 `json:"laboursWorked" bson:"laboursWorked"`
	ActualMaterialUsedToday string  `json:"actualMaterialUsedToday" bson:"actualMaterialUsedToday"`
	// 百分比
	WorkCompletedToday float64  `json:"workCompletedToday" bson:"workCompletedToday"`
	TotalWorkCompleted *float64 `json:"totalWorkCompleted,omitempty" bson:"totalWorkCompleted,omitempty"`
	ExternalDelay      float64  `json:"externalDelay" bson:"externalDelay"`
	InternalDelay      float64  `json:"internalDelay" bson:"internalDelay"`
	MaterialCostInDays float64  `json:"materialCostInDays" bson:"materialCostInDays"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProgressSchema 进度校验规则
var ProgressSchema = validation.MustCompile(EntityProgress,
	validation.Field{Name: FieldProject, Rule: validation.Rule{Type: validation.String, Required: true}},
	validation.Field{Name: FieldClient, Rule: validation.Rule{Type: validation.String, Required: true}},
	validation.Field{Name: FieldManager, Rule: validation.Rule{Type: validation.String, Required: true}},
	validation.Field{Name: FieldDescription, Rule: validation.Rule{Type: validation.String, Required: true}},
	validation.Field{Name: FieldStartDate, Rule: validation.Rule{Type: validation.Date, Required: true}},
	validation.Field{Name: FieldEndDate, Rule: validation.Rule{Type: validation.Date, Required: true}},
	validation.Field{Name: FieldFiveDayCost, Rule: validation.Rule{Type: validation.Number, Required: true}},
	validation.Field{Name: FieldLaboursWorked, Rule: validation.Rule{Type: validation.Number, Required: true}},
	validation.Field{Name: FieldActualMaterialUsedToday, Rule: validation.Rule{Type: validation.String, Required: true}},
	validation.Field{Name: FieldWorkCompletedToday, Rule: validation.Rule{Type: validation.Number, Required: true}},
	validation.Field{Name: FieldTotalWorkCompleted, Rule: validation.Rule{Type: validation.Number}},
	validation.Field{Name: FieldExternalDelay, Rule: validation.Rule{Type: validation.Number, Required: true}},
	validation.Field{Name: FieldInternalDelay, Rule: validation.Rule{Type: validation.Number, Required: true}},
	validation.Field{Name: FieldMaterialCostInDays, Rule: validation.Rule{Type: validation.Number, Required: true}},
)

type ProgressInput struct {
	Project                 *string  `json:"project"`
	Client                  *string  `json:"client"`
	Manager                 *string  `json:"manager"`
	Description             *string  `json:"description"`
	StartDate               *Date    `json:"startDate"`
	EndDate                 *Date    `json:"endDate"`
	FiveDayCost             *float64 `json:"fiveDayCost"`
	LaboursWorked           *float64 `json:"laboursWorked"`
	ActualMaterialUsedToday *string  `json:"actualMaterialUsedToday"`
	WorkCompletedToday      *float64 `json:"workCompletedToday"`
	TotalWorkCompleted      *float64 `json:"totalWorkCompleted"`
	ExternalDelay           *float64 `json:"externalDelay"`
	InternalDelay           *float64 `json:"internalDelay"`
	MaterialCostInDays      *float64 `json:"materialCostInDays"`
}

func (in ProgressInput) Document() validation.Document {
	doc := validation.Document{}
	putString(doc, FieldProject, in.Project)
	putString(doc, FieldClient, in.Client)
	putString(doc, FieldManager, in.Manager)
	putString(doc, FieldDescription, in.Description)
	putDate(doc, FieldStartDate, in.StartDate)
	putDate(doc, FieldEndDate, in.EndDate)
	putFloat(doc, FieldFiveDayCost, in.FiveDayCost)
	putFloat(doc, FieldLaboursWorked, in.LaboursWorked)
	putString(doc, FieldActualMaterialUsedToday, in.ActualMaterialUsedToday)
	putFloat(doc, FieldWorkCompletedToday, in.WorkCompletedToday)
	putFloat(doc, FieldTotalWorkCompleted, in.TotalWorkCompleted)
	putFloat(doc, FieldExternalDelay, in.ExternalDelay)
	putFloat(doc, FieldInternalDelay, in.InternalDelay)
	putFloat(doc, FieldMaterialCostInDays, in.MaterialCostInDays)
	return doc
}

func NewProgress(doc validation.Document) *Progress {
	p := &Progress{}
	p.Apply(doc)
	return p
}

func (p *Progress) Apply(doc validation.Document) {
	for key := range doc {
		switch key {
		case FieldProject:
			p.Project = doc.String(key)
		case FieldClient:
			p.Client = doc.String(key)
		case FieldManager:
			p.Manager = doc.String(key)
		case FieldDescription:
			p.Description = doc.String(key)
		case FieldStartDate:
			p.StartDate = doc.Time(key)
		case FieldEndDate:
			p.EndDate = doc.Time(key)
		case FieldFiveDayCost:
			p.FiveDayCost = doc.Float(key)
		case FieldLaboursWorked:
			p.LaboursWorked = doc.Float(key)
		case FieldActualMaterialUsedToday:
			p.ActualMaterialUsedToday = doc.String(key)
		case FieldWorkCompletedToday:
			p.WorkCompletedToday = doc.Float(key)
		case FieldTotalWorkCompleted:
			p.TotalWorkCompleted = doc.FloatPtr(key)
		case FieldExternalDelay:
			p.ExternalDelay = doc.Float(key)
		case FieldInternalDelay:
			p.InternalDelay = doc.Float(key)
		case FieldMaterialCostInDays:
			p.MaterialCostInDays = doc.Float(key)
		}
	}
}

func (p *Progress) Clone() *Progress {
	c := *p
	if p.TotalWorkCompleted != nil {
		total := *p.TotalWorkCompleted
		c.TotalWorkCompleted = &total
	}
	return &c
}

// PopulatedProgress is a progress entry with its references resolved inline.
// The outer fields shadow the id fields of the embedded Progress when encoded;
// a reference that no longer resolves is encoded as null.
type PopulatedProgress struct {
	Progress
	Project *Project `json:"project"`
	Client  *User    `json:"client"`
	Manager *User    `json:"manager"`
}
