package api

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"tasteal/internal/chat"
)

const maxUploadBytes = 10 << 20

// imageExts are the attachment types accepted for upload.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type sendMessageRequest struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.app.Chat.Conversations(r.Context(), callerUID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msgs, err := s.app.Chat.Messages(r.Context(), callerUID(r), r.PathValue("combinedID"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleSendMessage accepts JSON, or a multipart form whose "images" files
// are attached to the message.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var (
		req         sendMessageRequest
		attachments []chat.Attachment
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.writeError(w, r, badRequest("invalid multipart form: %v", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		req.Receiver = r.FormValue("receiver")
		req.Text = r.FormValue("text")
		for _, fh := range r.MultipartForm.File["images"] {
			ext := strings.ToLower(path.Ext(fh.Filename))
			if !imageExts[ext] {
				s.writeError(w, r, badRequest("unsupported image type %q", ext))
				return
			}
			f, err := fh.Open()
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			defer f.Close()
			attachments = append(attachments, chat.Attachment{Ext: ext, Body: f})
		}
	} else if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.app.Chat.Send(r.Context(), callerUID(r), req.Receiver, req.Text, attachments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
