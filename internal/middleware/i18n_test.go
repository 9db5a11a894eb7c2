package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ID")
				r.Header.Set("Accept-Language", "en-US")
			},
			want: "id",
		},
		{
			name: "accept-language english",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "en",
		},
		{
			name: "accept-language indonesian preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "id-ID,en;q=0.8")
			},
			want: "id",
		},
		{
			name: "unsupported language falls back",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-FR")
			},
			fallback: "id",
			want:     "id",
		},
		{
			name:     "no headers uses fallback",
			setup:    func(r *http.Request) {},
			fallback: "id",
			want:     "id",
		},
		{
			name:  "no headers no fallback defaults to english",
			setup: func(r *http.Request) {},
			want:  "en",
		},
		{
			name: "garbage x-locale ignored",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "!!!")
				r.Header.Set("Accept-Language", "id")
			},
			want: "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			if got := detectLocale(r, tt.fallback); got != tt.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestI18NStoresLocaleInContext(t *testing.T) {
	var got string
	handler := I18N("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "id")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if got != "id" {
		t.Fatalf("locale in context mismatch: %q", got)
	}
}

func TestLocaleFromContextDefault(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := LocaleFromContext(r.Context()); got != "en" {
		t.Fatalf("default locale mismatch: %q", got)
	}
}
