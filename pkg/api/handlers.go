package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
	"github.com/cheetah-game-platform/realtime/pkg/snapshot"
	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

const (
	operationEncode = "encode"
	operationDecode = "decode"
)

// handleHealth godoc
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, HealthResponse{
		Status:    "healthy",
		Codecs:    s.registry.Len(),
		Snapshots: s.snapshots != nil,
		Capture:   s.recorder != nil,
	})
}

// handleListCodecs godoc
//
//	@Summary		List codecs
//	@Description	Layouts of every registered record, in registration order
//	@Tags			codecs
//	@Produce		json
//	@Success		200	{array}	CodecInfo
//	@Router			/codecs [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListCodecs(w http.ResponseWriter, r *http.Request) {
	codecs := s.registry.Codecs()
	infos := make([]CodecInfo, len(codecs))
	for i, c := range codecs {
		infos[i] = newCodecInfo(c)
	}
	sendSuccess(w, infos)
}

// handleGetCodec godoc
//
//	@Summary		Get a codec layout
//	@Tags			codecs
//	@Produce		json
//	@Param			name	path		string	true	"Codec name"
//	@Success		200		{object}	CodecInfo
//	@Failure		404		{object}	map[string]string
//	@Router			/codecs/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetCodec(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sendSuccess(w, newCodecInfo(c))
}

// handleEncode godoc
//
//	@Summary		Encode a record
//	@Description	Encodes a JSON record with the named codec and returns the bytes as hex
//	@Tags			codecs
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string	true	"Codec name"
//	@Success		200		{object}	EncodeResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/codecs/{name}/encode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	value, data, err := s.encodeBody(c, w, r)
	if err != nil {
		s.metrics.RecordCodecOperation(c.Name(), operationEncode, false, 0)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation(c.Name(), operationEncode, true, len(data))
	s.record(c, value)

	sendSuccess(w, EncodeResponse{
		Codec: c.Name(),
		Hex:   hex.EncodeToString(data),
		Size:  len(data),
	})
}

// handleDecode godoc
//
//	@Summary		Decode a record
//	@Description	Decodes an octet-stream body, or a JSON body holding {"hex": "..."}, with the named codec
//	@Tags			codecs
//	@Accept			octet-stream,json
//	@Produce		json
//	@Param			name	path		string	true	"Codec name"
//	@Success		200		{object}	DecodeResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		422		{object}	map[string]string
//	@Router			/codecs/{name}/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	payload, err := s.readPayload(w, r)
	if err != nil {
		s.metrics.RecordCodecOperation(c.Name(), operationDecode, false, 0)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	buf := wire.FromBytes(payload)
	value, err := c.DecodeValue(buf)
	if err != nil {
		s.metrics.RecordCodecOperation(c.Name(), operationDecode, false, 0)
		sendError(w, fmt.Sprintf("Failed to decode %s: %v", c.Name(), err), decodeStatus(err))
		return
	}
	s.metrics.RecordCodecOperation(c.Name(), operationDecode, true, buf.ReadOffset())
	s.record(c, value)

	sendSuccess(w, DecodeResponse{
		Codec:    c.Name(),
		Record:   value,
		Consumed: buf.ReadOffset(),
		Trailing: buf.Remaining(),
	})
}

// handleListSnapshots godoc
//
//	@Summary		List snapshot ids
//	@Tags			snapshots
//	@Produce		json
//	@Success		200	{array}		string
//	@Failure		503	{object}	map[string]string
//	@Router			/snapshots [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.snapshotsEnabled(w) {
		return
	}

	ids, err := s.snapshots.List()
	s.metrics.RecordSnapshotOperation("list", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list snapshots: %v", err), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []ksuid.KSUID{}
	}
	sendSuccess(w, ids)
}

// handleCreateSnapshot godoc
//
//	@Summary		Store a record snapshot
//	@Description	Encodes a JSON record with the named codec and stores the bytes
//	@Tags			snapshots
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string	true	"Codec name"
//	@Success		201		{object}	SnapshotCreated
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		503		{object}	map[string]string
//	@Router			/codecs/{name}/snapshots [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.snapshotsEnabled(w) {
		return
	}
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	_, data, err := s.encodeBody(c, w, r)
	if err != nil {
		s.metrics.RecordCodecOperation(c.Name(), operationEncode, false, 0)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation(c.Name(), operationEncode, true, len(data))

	id, err := s.snapshots.Put(c.Name(), data)
	s.metrics.RecordSnapshotOperation("put", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to store snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	s.logger.Debug("snapshot stored", zap.Stringer("id", id), zap.String("codec", c.Name()))
	sendCreated(w, SnapshotCreated{ID: id, Codec: c.Name(), Size: len(data)})
}

// handleGetSnapshot godoc
//
//	@Summary		Get a snapshot
//	@Description	Returns the stored bytes and, when the codec is still registered, the decoded record
//	@Tags			snapshots
//	@Produce		json
//	@Param			id	path		string	true	"Snapshot id"
//	@Success		200	{object}	SnapshotResponse
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/snapshots/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.snapshotsEnabled(w) {
		return
	}
	id, ok := parseSnapshotID(w, r)
	if !ok {
		return
	}

	snap, err := s.snapshots.Get(id)
	s.metrics.RecordSnapshotOperation("get", err == nil)
	if err != nil {
		sendSnapshotError(w, err)
		return
	}

	resp := SnapshotResponse{
		ID:        snap.ID,
		Codec:     snap.Name,
		CreatedAt: snap.CreatedAt,
		Hex:       hex.EncodeToString(snap.Payload),
	}

	// Records whose codec is gone are returned as bytes only
	if c, err := s.registry.ResolveName(snap.Name); err == nil {
		value, err := c.DecodeValue(wire.FromBytes(snap.Payload))
		s.metrics.RecordCodecOperation(c.Name(), operationDecode, err == nil, len(snap.Payload))
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to decode snapshot: %v", err), http.StatusUnprocessableEntity)
			return
		}
		resp.Record = value
	}

	sendSuccess(w, resp)
}

// handleDeleteSnapshot godoc
//
//	@Summary		Delete a snapshot
//	@Tags			snapshots
//	@Produce		json
//	@Param			id	path		string	true	"Snapshot id"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/snapshots/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.snapshotsEnabled(w) {
		return
	}
	id, ok := parseSnapshotID(w, r)
	if !ok {
		return
	}

	err := s.snapshots.Delete(id)
	s.metrics.RecordSnapshotOperation("delete", err == nil)
	if err != nil {
		sendSnapshotError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "Snapshot deleted successfully"})
}

// lookup resolves the {name} parameter, answering 404 for unknown codecs
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*codec.Codec, bool) {
	name := chi.URLParam(r, "name")
	c, err := s.registry.ResolveName(name)
	if err != nil {
		sendError(w, fmt.Sprintf("Codec %q not found", name), http.StatusNotFound)
		return nil, false
	}
	return c, true
}

// encodeBody decodes a JSON record for c from the request and encodes it
func (s *Server) encodeBody(c *codec.Codec, w http.ResponseWriter, r *http.Request) (any, []byte, error) {
	value := c.New()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON record for %s: %v", c.Name(), err)
	}

	buf := wire.NewBuffer(64)
	if err := c.EncodeValue(value, buf); err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %v", c.Name(), err)
	}
	return value, buf.Bytes(), nil
}

// readPayload returns the raw request body, or the bytes of {"hex": "..."}
// when the body is JSON
func (s *Server) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %v", err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return body, nil
	}

	var req DecodeRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON in request body: %v", err)
	}
	payload, err := hex.DecodeString(req.Hex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %v", err)
	}
	return payload, nil
}

// record appends value to the capture log when one is configured. Capture
// failures never fail the request.
func (s *Server) record(c *codec.Codec, value any) {
	if s.recorder == nil {
		return
	}
	_, err := s.recorder.Record(c, value)
	s.metrics.RecordCaptureFrame(err == nil)
	if err != nil {
		s.logger.Warn("failed to capture record", zap.String("codec", c.Name()), zap.Error(err))
	}
}

func (s *Server) snapshotsEnabled(w http.ResponseWriter) bool {
	if s.snapshots == nil {
		sendError(w, "Snapshots are disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func parseSnapshotID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid snapshot id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func sendSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, snapshot.ErrNotFound) {
		sendError(w, "Snapshot not found", http.StatusNotFound)
		return
	}
	sendError(w, fmt.Sprintf("Snapshot operation failed: %v", err), http.StatusInternalServerError)
}

// decodeStatus maps malformed payloads to 422
func decodeStatus(err error) int {
	if errors.Is(err, codec.ErrBufferUnderrun) || errors.Is(err, codec.ErrVarintOverflow) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
