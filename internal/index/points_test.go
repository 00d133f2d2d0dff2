package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

func testRecord(id string, chunkIndex int) domain.VectorRecord {
	return domain.VectorRecord{
		ID:     id,
		Vector: []float32{0.1, 0.2, 0.3, 0.4},
		Payload: domain.Payload{
			Text:          "chunk text",
			UserID:        7,
			UserName:      "ada",
			Title:         "Notes",
			SourceType:    domain.SourceDocumentType,
			SourceLocator: "/tmp/notes.pdf",
			ExternalRef:   42,
			ChunkIndex:    chunkIndex,
			IngestedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestUpsert_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(10)),
			mock.Result(mock.RedisInt64(10)),
		})

	col := newTestCollection(c)
	ids, err := col.Upsert(context.Background(), []domain.VectorRecord{
		testRecord("p1", 0),
		testRecord("p2", 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestUpsert_Empty(t *testing.T) {
	col := newTestCollection(nil) // client not called
	ids, err := col.Upsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil ids, got %v", ids)
	}
}

func TestUpsert_PartialFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(10)),
			mock.ErrorResult(context.DeadlineExceeded),
		})
	// Rollback removes both batch keys, including the one that succeeded.
	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "sv:docs:p1", "sv:docs:p2")).
		Return(mock.Result(mock.RedisInt64(1)))

	col := newTestCollection(c)
	_, err := col.Upsert(context.Background(), []domain.VectorRecord{
		testRecord("p1", 0),
		testRecord("p2", 1),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrIndex) {
		t.Fatalf("expected ErrIndex in chain, got %v", err)
	}
}

func TestDeleteByRef_SinglePage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[2] == "@external_reference_id:{42} @user_id:{7}"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("sv:docs:p1"),
			mock.RedisString("sv:docs:p2"),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "sv:docs:p1", "sv:docs:p2")).
		Return(mock.Result(mock.RedisInt64(2)))

	col := newTestCollection(c)
	deleted, err := col.DeleteByRef(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
}

func TestDeleteByRef_AbsentDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	col := newTestCollection(c)
	deleted, err := col.DeleteByRef(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", deleted)
	}
}

func TestDeleteByRef_MissingIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	col := newTestCollection(c)
	deleted, err := col.DeleteByRef(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("expected nil for missing index, got %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", deleted)
	}
}

func TestDeleteByRef_DelError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("sv:docs:p1"),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "sv:docs:p1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	col := newTestCollection(c)
	_, err := col.DeleteByRef(context.Background(), 42, 7)
	if !errors.Is(err, domain.ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
}

func TestHashFields_RoundTrip(t *testing.T) {
	rec := testRecord("p1", 3)

	fields := buildHashFields(rec)
	got := parsePayload(fields)

	if got.Text != rec.Payload.Text {
		t.Errorf("text: got %q, want %q", got.Text, rec.Payload.Text)
	}
	if got.UserID != rec.Payload.UserID {
		t.Errorf("user id: got %d, want %d", got.UserID, rec.Payload.UserID)
	}
	if got.UserName != rec.Payload.UserName {
		t.Errorf("user name: got %q, want %q", got.UserName, rec.Payload.UserName)
	}
	if got.SourceType != rec.Payload.SourceType {
		t.Errorf("source type: got %q, want %q", got.SourceType, rec.Payload.SourceType)
	}
	if got.ExternalRef != rec.Payload.ExternalRef {
		t.Errorf("external ref: got %d, want %d", got.ExternalRef, rec.Payload.ExternalRef)
	}
	if got.ChunkIndex != rec.Payload.ChunkIndex {
		t.Errorf("chunk index: got %d, want %d", got.ChunkIndex, rec.Payload.ChunkIndex)
	}
	if !got.IngestedAt.Equal(rec.Payload.IngestedAt) {
		t.Errorf("ingested at: got %v, want %v", got.IngestedAt, rec.Payload.IngestedAt)
	}
}

func TestVectorBytes_RoundTrip(t *testing.T) {
	v := []float32{0.5, -1.25, 3.75}
	got := bytesToVector(vectorToBytes(v))
	if len(got) != len(v) {
		t.Fatalf("expected %d floats, got %d", len(v), len(got))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], v[i])
		}
	}
}

func TestBytesToVector_Misaligned(t *testing.T) {
	if v := bytesToVector("abc"); v != nil {
		t.Fatalf("expected nil for misaligned input, got %v", v)
	}
}
