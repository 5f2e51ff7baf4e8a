package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// findAllSize caps non-paged reads. The catalog is small relative to this;
// paged Search is the path for anything user-facing.
const findAllSize = 10000

// VideoRepository implements repository.VideoRepository over an Elasticsearch
// index. Writes index the full denormalized document; reads reconstruct the
// aggregate through the mapper.
//
// Scopes attached via AttachScope apply to every subsequent query until
// ClearScopes is called. A shared instance must clear them between unrelated
// calls or filters leak across requests.
type VideoRepository struct {
	client *elasticsearch.Client
	index  string
	scopes []Scope
}

func NewVideoRepository(client *elasticsearch.Client, index string) *VideoRepository {
	if index == "" {
		index = DefaultIndex
	}
	return &VideoRepository{client: client, index: index}
}

// AttachScope adds a filter clause applied to every query on this instance.
func (r *VideoRepository) AttachScope(scope Scope) {
	r.scopes = append(r.scopes, scope)
}

// ClearScopes removes every attached scope.
func (r *VideoRepository) ClearScopes() {
	r.scopes = nil
}

func (r *VideoRepository) Insert(ctx context.Context, video *model.Video) error {
	return r.indexDocument(ctx, video)
}

func (r *VideoRepository) BulkInsert(ctx context.Context, videos []*model.Video) error {
	if len(videos) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, video := range videos {
		meta := map[string]any{"index": map[string]any{"_index": r.index, "_id": video.ID.String()}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(ToDocument(video)); err != nil {
			return fmt.Errorf("failed to encode bulk document: %w", err)
		}
	}

	res, err := r.client.Bulk(&buf, r.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to bulk index videos: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index returned %s", res.Status())
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if body.Errors {
		return fmt.Errorf("bulk index reported item failures")
	}
	return nil
}

// Update fails with *model.NotFoundError when the document is absent, keeping
// parity with the relational backend.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	res, err := r.client.Exists(r.index, video.ID.String(), r.client.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check video document: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return model.NewNotFoundError("video", video.ID.String())
	}
	if res.IsError() {
		return fmt.Errorf("exists check returned %s", res.Status())
	}

	return r.indexDocument(ctx, video)
}

func (r *VideoRepository) Delete(ctx context.Context, id model.VideoID) error {
	res, err := r.client.Delete(r.index, id.String(), r.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete video document: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return model.NewNotFoundError("video", id.String())
	}
	if res.IsError() {
		return fmt.Errorf("delete returned %s", res.Status())
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id model.VideoID) (*model.Video, error) {
	res, err := r.client.Get(r.index, id.String(), r.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get video document: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("get returned %s", res.Status())
	}

	var body struct {
		Found  bool          `json:"found"`
		Source VideoDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode get response: %w", err)
	}
	if !body.Found {
		return nil, nil
	}
	return ToEntity(id.String(), body.Source)
}

func (r *VideoRepository) FindByIDs(ctx context.Context, ids []model.VideoID) ([]*model.Video, error) {
	docs, err := r.mget(ctx, ids, true)
	if err != nil {
		return nil, err
	}

	var videos []*model.Video
	for _, doc := range docs {
		if !doc.Found {
			continue
		}
		video, err := ToEntity(doc.ID, doc.Source)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

func (r *VideoRepository) ExistsByID(ctx context.Context, ids []model.VideoID) (repository.ExistsResult[model.VideoID], error) {
	var result repository.ExistsResult[model.VideoID]
	if len(ids) == 0 {
		return result, repository.ErrEmptyIDs
	}

	docs, err := r.mget(ctx, ids, false)
	if err != nil {
		return result, err
	}

	found := make(map[string]bool, len(docs))
	for _, doc := range docs {
		found[doc.ID] = doc.Found
	}
	for _, id := range ids {
		if found[id.String()] {
			result.Existent = append(result.Existent, id)
		} else {
			result.NonExistent = append(result.NonExistent, id)
		}
	}
	return result, nil
}

func (r *VideoRepository) FindAll(ctx context.Context) ([]*model.Video, error) {
	hits, _, err := r.search(ctx, buildScopedBody(r.scopes, findAllSize))
	if err != nil {
		return nil, err
	}

	videos := make([]*model.Video, 0, len(hits))
	for _, hit := range hits {
		video, err := ToEntity(hit.ID, hit.Source)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

func (r *VideoRepository) Search(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
	var result repository.SearchResult[*model.Video]

	hits, total, err := r.search(ctx, buildVideoSearchBody(params, r.scopes))
	if err != nil {
		return result, err
	}

	for _, hit := range hits {
		video, err := ToEntity(hit.ID, hit.Source)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, video)
	}

	result.Total = total
	result.CurrentPage = params.Page
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	result.PerPage = params.Limit()
	return result, nil
}

func (r *VideoRepository) indexDocument(ctx context.Context, video *model.Video) error {
	body, err := json.Marshal(ToDocument(video))
	if err != nil {
		return fmt.Errorf("failed to encode video document: %w", err)
	}

	res, err := r.client.Index(r.index, bytes.NewReader(body),
		r.client.Index.WithDocumentID(video.ID.String()),
		r.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index video document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index returned %s", res.Status())
	}
	return nil
}

type mgetDoc struct {
	ID     string        `json:"_id"`
	Found  bool          `json:"found"`
	Source VideoDocument `json:"_source"`
}

func (r *VideoRepository) mget(ctx context.Context, ids []model.VideoID, withSource bool) ([]mgetDoc, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	docs := make([]map[string]any, len(ids))
	for i, id := range ids {
		docs[i] = map[string]any{"_id": id.String(), "_source": withSource}
	}
	body, err := json.Marshal(map[string]any{"docs": docs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mget request: %w", err)
	}

	res, err := r.client.Mget(bytes.NewReader(body),
		r.client.Mget.WithIndex(r.index),
		r.client.Mget.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mget video documents: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("mget returned %s", res.Status())
	}

	var decoded struct {
		Docs []mgetDoc `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode mget response: %w", err)
	}
	return decoded.Docs, nil
}

type searchHit struct {
	ID     string        `json:"_id"`
	Source VideoDocument `json:"_source"`
}

func (r *VideoRepository) search(ctx context.Context, body map[string]any) ([]searchHit, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode search request: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(encoded)),
		r.client.Search.WithTrackTotalHits(true),
		r.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search video documents: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search returned %s", res.Status())
	}

	var decoded struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decoded.Hits.Hits, decoded.Hits.Total.Value, nil
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
