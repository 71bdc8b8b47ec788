package datacatalog

import (
	"time"

	"cloud.google.com/go/datacatalog/apiv1/datacatalogpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/resource"
)

func entryGroupToPB(g *catalog.EntryGroup) *datacatalogpb.EntryGroup {
	return &datacatalogpb.EntryGroup{
		DisplayName: g.DisplayName,
		Description: g.Description,
	}
}

func entryGroupFromPB(pb *datacatalogpb.EntryGroup) (*catalog.EntryGroup, error) {
	name, err := resource.ParseEntryGroupName(pb.GetName())
	if err != nil {
		return nil, err
	}
	return &catalog.EntryGroup{
		Name:        name,
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
	}, nil
}

// entryToPB converts an entry. The name is only sent on updates; creates
// address the entry through parent and id.
func entryToPB(e *catalog.Entry, withName bool) *datacatalogpb.Entry {
	pb := &datacatalogpb.Entry{
		LinkedResource: e.LinkedResource,
		DisplayName:    e.DisplayName,
		Description:    e.Description,
		EntryType:      &datacatalogpb.Entry_UserSpecifiedType{UserSpecifiedType: e.Type},
		System:         &datacatalogpb.Entry_UserSpecifiedSystem{UserSpecifiedSystem: e.System},
	}
	if withName {
		pb.Name = e.Name.String()
	}
	if !e.CreateTime.IsZero() || !e.UpdateTime.IsZero() {
		pb.SourceSystemTimestamps = &datacatalogpb.SystemTimestamps{
			CreateTime: toTimestamp(e.CreateTime),
			UpdateTime: toTimestamp(e.UpdateTime),
		}
	}
	return pb
}

func entryFromPB(pb *datacatalogpb.Entry) (*catalog.Entry, error) {
	name, err := resource.ParseEntryName(pb.GetName())
	if err != nil {
		return nil, err
	}
	ts := pb.GetSourceSystemTimestamps()
	return &catalog.Entry{
		Name:           name,
		System:         pb.GetUserSpecifiedSystem(),
		Type:           pb.GetUserSpecifiedType(),
		DisplayName:    pb.GetDisplayName(),
		Description:    pb.GetDescription(),
		LinkedResource: pb.GetLinkedResource(),
		CreateTime:     fromTimestamp(ts.GetCreateTime()),
		UpdateTime:     fromTimestamp(ts.GetUpdateTime()),
	}, nil
}

func tagToPB(t *catalog.Tag) *datacatalogpb.Tag {
	pb := &datacatalogpb.Tag{
		Name:     t.Name,
		Template: t.Template,
		Fields:   make(map[string]*datacatalogpb.TagField, len(t.Fields)),
	}
	for id, v := range t.Fields {
		pb.Fields[id] = fieldToPB(v)
	}
	return pb
}

func tagFromPB(pb *datacatalogpb.Tag) *catalog.Tag {
	t := &catalog.Tag{
		Name:     pb.GetName(),
		Template: pb.GetTemplate(),
		Fields:   make(map[string]catalog.FieldValue, len(pb.GetFields())),
	}
	for id, f := range pb.GetFields() {
		if v, ok := fieldFromPB(f); ok {
			t.Fields[id] = v
		}
	}
	return t
}

func fieldToPB(v catalog.FieldValue) *datacatalogpb.TagField {
	f := &datacatalogpb.TagField{}
	switch v.Type {
	case catalog.FieldTypeDouble:
		f.Kind = &datacatalogpb.TagField_DoubleValue{DoubleValue: v.Double}
	case catalog.FieldTypeString:
		f.Kind = &datacatalogpb.TagField_StringValue{StringValue: v.String}
	case catalog.FieldTypeBool:
		f.Kind = &datacatalogpb.TagField_BoolValue{BoolValue: v.Bool}
	case catalog.FieldTypeTimestamp:
		f.Kind = &datacatalogpb.TagField_TimestampValue{TimestampValue: timestamppb.New(v.Timestamp)}
	case catalog.FieldTypeEnum:
		f.Kind = &datacatalogpb.TagField_EnumValue_{
			EnumValue: &datacatalogpb.TagField_EnumValue{DisplayName: v.Enum},
		}
	}
	return f
}

// fieldFromPB converts a tag field. Kinds without a variant (rich text) are
// dropped.
func fieldFromPB(f *datacatalogpb.TagField) (catalog.FieldValue, bool) {
	switch k := f.GetKind().(type) {
	case *datacatalogpb.TagField_DoubleValue:
		return catalog.DoubleValue(k.DoubleValue), true
	case *datacatalogpb.TagField_StringValue:
		return catalog.StringValue(k.StringValue), true
	case *datacatalogpb.TagField_BoolValue:
		return catalog.BoolValue(k.BoolValue), true
	case *datacatalogpb.TagField_TimestampValue:
		return catalog.TimestampValue(k.TimestampValue.AsTime()), true
	case *datacatalogpb.TagField_EnumValue_:
		return catalog.EnumValue(k.EnumValue.GetDisplayName()), true
	default:
		return catalog.FieldValue{}, false
	}
}

func tagTemplateToPB(t *catalog.TagTemplate) *datacatalogpb.TagTemplate {
	pb := &datacatalogpb.TagTemplate{
		DisplayName: t.DisplayName,
		Fields:      make(map[string]*datacatalogpb.TagTemplateField, len(t.Fields)),
	}
	for id, f := range t.Fields {
		pb.Fields[id] = &datacatalogpb.TagTemplateField{
			DisplayName: f.DisplayName,
			Type:        fieldTypeToPB(f.Type),
			Order:       f.Order,
		}
	}
	return pb
}

func tagTemplateFromPB(pb *datacatalogpb.TagTemplate) (*catalog.TagTemplate, error) {
	name, err := resource.ParseTagTemplateName(pb.GetName())
	if err != nil {
		return nil, err
	}
	t := &catalog.TagTemplate{
		Name:        name,
		DisplayName: pb.GetDisplayName(),
		Fields:      make(map[string]catalog.TemplateField, len(pb.GetFields())),
	}
	for id, f := range pb.GetFields() {
		t.Fields[id] = catalog.TemplateField{
			DisplayName: f.GetDisplayName(),
			Type:        fieldTypeFromPB(f.GetType()),
			Order:       f.GetOrder(),
		}
	}
	return t, nil
}

var primitiveTypes = map[catalog.FieldType]datacatalogpb.FieldType_PrimitiveType{
	catalog.FieldTypeDouble:    datacatalogpb.FieldType_DOUBLE,
	catalog.FieldTypeString:    datacatalogpb.FieldType_STRING,
	catalog.FieldTypeBool:      datacatalogpb.FieldType_BOOL,
	catalog.FieldTypeTimestamp: datacatalogpb.FieldType_TIMESTAMP,
}

func fieldTypeToPB(t catalog.FieldType) *datacatalogpb.FieldType {
	if t == catalog.FieldTypeEnum {
		return &datacatalogpb.FieldType{TypeDecl: &datacatalogpb.FieldType_EnumType_{EnumType: &datacatalogpb.FieldType_EnumType{}}}
	}
	return &datacatalogpb.FieldType{
		TypeDecl: &datacatalogpb.FieldType_PrimitiveType_{PrimitiveType: primitiveTypes[t]},
	}
}

func fieldTypeFromPB(pb *datacatalogpb.FieldType) catalog.FieldType {
	if pb.GetEnumType() != nil {
		return catalog.FieldTypeEnum
	}
	for t, p := range primitiveTypes {
		if pb.GetPrimitiveType() == p {
			return t
		}
	}
	return catalog.FieldTypeUnspecified
}

func toTimestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func fromTimestamp(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}
