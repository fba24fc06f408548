package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != string(FilePurposeBatch) {
			t.Errorf("purpose = %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "requests.jsonl" {
			t.Errorf("filename = %q", header.Filename)
		}

		json.NewEncoder(w).Encode(File{
			ID:       "file-1",
			Filename: header.Filename,
			Purpose:  FilePurposeBatch,
			Bytes:    42,
		})
	})

	file, err := client.UploadFile(context.Background(), &FileUploadRequest{
		File:     strings.NewReader(`{"custom_id":"a"}`),
		Filename: "requests.jsonl",
		Purpose:  FilePurposeBatch,
	})
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if file.ID != "file-1" {
		t.Errorf("ID = %q", file.ID)
	}
}

func TestListFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("page_size") != "10" {
			t.Errorf("query = %v", q)
		}
		if q.Get("purpose") != string(FilePurposeOCR) {
			t.Errorf("purpose = %q", q.Get("purpose"))
		}
		json.NewEncoder(w).Encode(FileList{
			Data:  []File{{ID: "file-1"}, {ID: "file-2"}},
			Total: 12,
		})
	})

	list, err := client.ListFiles(context.Background(), &ListFilesParams{
		Page:     2,
		PageSize: 10,
		Purpose:  FilePurposeOCR,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(list.Data) != 2 || list.Total != 12 {
		t.Errorf("list = %+v", list)
	}
}

func TestGetAndDeleteFile(t *testing.T) {
	var deleted bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files/file-9":
			json.NewEncoder(w).Encode(File{ID: "file-9", Filename: "audio.mp3"})
		case r.Method == http.MethodDelete && r.URL.Path == "/files/file-9":
			deleted = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request = %s %s", r.Method, r.URL.Path)
		}
	})

	file, err := client.GetFile(context.Background(), "file-9")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if file.Filename != "audio.mp3" {
		t.Errorf("Filename = %q", file.Filename)
	}

	if err := client.DeleteFile(context.Background(), "file-9"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if !deleted {
		t.Error("delete request never reached the server")
	}
}

func TestDownloadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/file-3/content" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("raw bytes"))
	})

	rc, err := client.DownloadFile(context.Background(), "file-3")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(content) != "raw bytes" {
		t.Errorf("content = %q", content)
	}
}

func TestDownloadFileNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","message":"file not found","type":"not_found"}`))
	})

	_, err := client.DownloadFile(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
