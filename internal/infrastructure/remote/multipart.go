package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"

	"github.com/oksasatya/course-admin/internal/domain/repository"
)

// encodeMultipart writes payload as form fields and files as file parts.
// Nested values are flattened with bracket notation: title[en], options[0][ar].
func encodeMultipart(payload any, files []repository.Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields, err := flatten(payload)
	if err != nil {
		return nil, "", err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		if f.Content == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copying %s: %w", f.FileName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func flatten(payload any) (map[string]string, error) {
	out := map[string]string{}
	if payload == nil {
		return out, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("multipart payload must be an object, got %T", generic)
	}
	for k, v := range obj {
		flattenInto(out, k, v)
	}
	return out, nil
}

func flattenInto(out map[string]string, key string, v any) {
	switch x := v.(type) {
	case nil:
	case map[string]any:
		for k, sub := range x {
			flattenInto(out, key+"["+k+"]", sub)
		}
	case []any:
		for i, sub := range x {
			flattenInto(out, key+"["+strconv.Itoa(i)+"]", sub)
		}
	case string:
		out[key] = x
	case json.Number:
		out[key] = x.String()
	case bool:
		out[key] = strconv.FormatBool(x)
	default:
		out[key] = fmt.Sprint(x)
	}
}
