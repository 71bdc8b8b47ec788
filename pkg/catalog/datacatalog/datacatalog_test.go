package datacatalog

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"cloud.google.com/go/datacatalog/apiv1/datacatalogpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/agentstation/catalogsync/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

var group = resource.Location{Project: "p", Location: "us-central1"}.EntryGroup("g")

// fakeServer is a minimal Data Catalog backend.
type fakeServer struct {
	datacatalogpb.UnimplementedDataCatalogServer

	entries map[string]*datacatalogpb.Entry
	tags    map[string][]*datacatalogpb.Tag
	results []*datacatalogpb.SearchCatalogResult
	updates []*datacatalogpb.UpdateEntryRequest
}

func (s *fakeServer) GetEntry(_ context.Context, req *datacatalogpb.GetEntryRequest) (*datacatalogpb.Entry, error) {
	e, ok := s.entries[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "no entry")
	}
	return e, nil
}

func (s *fakeServer) CreateEntry(_ context.Context, req *datacatalogpb.CreateEntryRequest) (*datacatalogpb.Entry, error) {
	name := req.GetParent() + "/entries/" + req.GetEntryId()
	if _, ok := s.entries[name]; ok {
		return nil, status.Error(codes.AlreadyExists, "exists")
	}
	e := proto.Clone(req.GetEntry()).(*datacatalogpb.Entry)
	e.Name = name
	s.entries[name] = e
	return e, nil
}

func (s *fakeServer) UpdateEntry(_ context.Context, req *datacatalogpb.UpdateEntryRequest) (*datacatalogpb.Entry, error) {
	s.updates = append(s.updates, req)
	s.entries[req.GetEntry().GetName()] = req.GetEntry()
	return req.GetEntry(), nil
}

func (s *fakeServer) DeleteEntry(_ context.Context, req *datacatalogpb.DeleteEntryRequest) (*emptypb.Empty, error) {
	if _, ok := s.entries[req.GetName()]; !ok {
		return nil, status.Error(codes.PermissionDenied, "denied")
	}
	delete(s.entries, req.GetName())
	return &emptypb.Empty{}, nil
}

func (s *fakeServer) GetTagTemplate(_ context.Context, req *datacatalogpb.GetTagTemplateRequest) (*datacatalogpb.TagTemplate, error) {
	return nil, status.Error(codes.PermissionDenied, "caller lacks access or template missing")
}

func (s *fakeServer) ListTags(_ context.Context, req *datacatalogpb.ListTagsRequest) (*datacatalogpb.ListTagsResponse, error) {
	return &datacatalogpb.ListTagsResponse{Tags: s.tags[req.GetParent()]}, nil
}

func (s *fakeServer) CreateTag(_ context.Context, req *datacatalogpb.CreateTagRequest) (*datacatalogpb.Tag, error) {
	t := proto.Clone(req.GetTag()).(*datacatalogpb.Tag)
	t.Name = fmt.Sprintf("%s/tags/%d", req.GetParent(), len(s.tags[req.GetParent()])+1)
	s.tags[req.GetParent()] = append(s.tags[req.GetParent()], t)
	return t, nil
}

func (s *fakeServer) SearchCatalog(_ context.Context, req *datacatalogpb.SearchCatalogRequest) (*datacatalogpb.SearchCatalogResponse, error) {
	if req.GetOrderBy() != "relevance" {
		return nil, status.Error(codes.InvalidArgument, "unexpected order")
	}
	offset := 0
	if req.GetPageToken() != "" {
		offset, _ = strconv.Atoi(req.GetPageToken())
	}
	end := min(offset+int(req.GetPageSize()), len(s.results))
	resp := &datacatalogpb.SearchCatalogResponse{Results: s.results[offset:end]}
	if end < len(s.results) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	return resp, nil
}

func newTestClient(t *testing.T, srv *fakeServer) *Client {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	gs := grpc.NewServer()
	datacatalogpb.RegisterDataCatalogServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, err := New(context.Background(),
		option.WithEndpoint(lis.Addr().String()),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		entries: make(map[string]*datacatalogpb.Entry),
		tags:    make(map[string][]*datacatalogpb.Tag),
	}
}

func TestClientEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	client := newTestClient(t, srv)
	name := group.Entry("report_1")

	_, err := client.GetEntry(ctx, name)
	assert.True(t, pkgerrors.IsNotFound(err))

	updated := time.Unix(1700000000, 0).UTC()
	created, err := client.CreateEntry(ctx, group, "report_1", &catalog.Entry{
		System:         "cloud_storage",
		Type:           "csv",
		DisplayName:    "report_1",
		LinkedResource: "gs://b1/report-1.csv",
		UpdateTime:     updated,
	})
	require.NoError(t, err)
	assert.Equal(t, name, created.Name)

	got, err := client.GetEntry(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "cloud_storage", got.System)
	assert.Equal(t, "csv", got.Type)
	assert.True(t, got.UpdateTime.Equal(updated))
	assert.True(t, got.CreateTime.IsZero())

	_, err = client.CreateEntry(ctx, group, "report_1", &catalog.Entry{})
	assert.True(t, pkgerrors.IsAlreadyExists(err))

	got.Type = "tsv"
	_, err = client.UpdateEntry(ctx, got)
	require.NoError(t, err)
	require.Len(t, srv.updates, 1)
	assert.Nil(t, srv.updates[0].GetUpdateMask(), "updates overwrite every field")
	assert.Equal(t, name.String(), srv.updates[0].GetEntry().GetName())

	require.NoError(t, client.DeleteEntry(ctx, name))
	assert.True(t, pkgerrors.IsPermissionDenied(client.DeleteEntry(ctx, name)))
}

func TestClientTemplateDenied(t *testing.T) {
	client := newTestClient(t, newFakeServer())

	_, err := client.GetTagTemplate(context.Background(), resource.Location{Project: "p", Location: "us-central1"}.TagTemplate("t"))
	lookup, err := catalog.Resolve[catalog.TagTemplate](nil, err)
	require.NoError(t, err)
	assert.Equal(t, catalog.Denied, lookup.Status)
}

func TestClientTags(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newFakeServer())
	entry := group.Entry("a")
	exec := time.Unix(1700000000, 0)

	_, err := client.CreateTag(ctx, entry, &catalog.Tag{
		Template: "projects/p/locations/us-central1/tagTemplates/t",
		Fields: map[string]catalog.FieldValue{
			"file_size":      catalog.DoubleValue(42),
			"file_name":      catalog.StringValue("report-1.csv"),
			"execution_time": catalog.TimestampValue(exec),
			"tier":           catalog.EnumValue("HOT"),
			"archived":       catalog.BoolValue(true),
		},
	})
	require.NoError(t, err)

	tags, err := client.ListTags(ctx, entry)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, entry.String()+"/tags/1", tags[0].Name)
	assert.True(t, tags[0].Fields["file_size"].Equal(catalog.DoubleValue(42)))
	assert.True(t, tags[0].Fields["execution_time"].Equal(catalog.TimestampValue(exec)))
	assert.True(t, tags[0].Fields["tier"].Equal(catalog.EnumValue("HOT")))
	assert.True(t, tags[0].Fields["archived"].Equal(catalog.BoolValue(true)))
}

func TestClientSearchPages(t *testing.T) {
	srv := newFakeServer()
	for i := range 5 {
		srv.results = append(srv.results, &datacatalogpb.SearchCatalogResult{
			RelativeResourceName: group.Entry(fmt.Sprintf("e%d", i)).String(),
		})
	}
	client := newTestClient(t, srv)

	var names []string
	token := ""
	for {
		page, err := client.SearchCatalog(context.Background(), catalog.SearchRequest{
			ProjectIDs: []string{"p"},
			Query:      "system=cloud_storage g",
			OrderBy:    "relevance",
			PageSize:   2,
			PageToken:  token,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Results), 2)
		for _, r := range page.Results {
			names = append(names, r.RelativeResourceName)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	assert.Len(t, names, 5)
}

func TestConvertTemplate(t *testing.T) {
	name := resource.Location{Project: "p", Location: "us-central1"}.TagTemplate("t")
	in := &catalog.TagTemplate{
		Name:        name,
		DisplayName: "Details",
		Fields: map[string]catalog.TemplateField{
			"execution_time": {DisplayName: "Sync Execution time", Type: catalog.FieldTypeTimestamp, Order: 5},
			"file_size":      {DisplayName: "File Size", Type: catalog.FieldTypeDouble, Order: 1},
			"tier":           {DisplayName: "Tier", Type: catalog.FieldTypeEnum},
		},
	}

	pb := tagTemplateToPB(in)
	assert.Equal(t, datacatalogpb.FieldType_TIMESTAMP, pb.GetFields()["execution_time"].GetType().GetPrimitiveType())
	pb.Name = name.String()

	out, err := tagTemplateFromPB(pb)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConvertEntryWithoutTimestamps(t *testing.T) {
	pb := entryToPB(&catalog.Entry{Name: group.Entry("a"), Type: "csv"}, false)
	assert.Nil(t, pb.GetSourceSystemTimestamps())
	assert.Empty(t, pb.GetName())
	assert.Equal(t, "csv", pb.GetUserSpecifiedType())
}
