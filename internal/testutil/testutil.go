// Package testutil provides shared test helpers for config files and dictionary fixtures.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleCSV is a small export of the dictionary sheet.
// It has 7 rows; row 4 has no isv headword.
const SampleCSV = `id,isv,addition,partOfSpeech,type,en,sameInLanguages,genesis,ru,be,uk,pl,cs,sk,bg,mk,sr,hr,sl,cu,de,nl,eo,frequency,intelligibility,using_example
1,voda,,f.,1,water,,S,вода,вада,вода,woda,voda,voda,вода,вода,вода,voda,voda,вода,Wasser,water,akvo,,ru+ be+ uk+ pl+ cs+ sk+ bg+ mk+ sr+ hr+ sl+,Pijem čistu vodu.
2,ogenj,,m.,1,fire,,,огонь,агонь,вогонь,ogień,oheň,oheň,огън,оган,огањ,oganj,ogenj,огнь,Feuer,vuur,fajro,,,
3,čas,,m.,1,"time, hour",,,"время, час",час,час,czas,čas,čas,час,час,час,čas,čas,,Zeit,tijd,tempo,,,
4,,,,,orphan row,,,,,,,,,,,,,,,,,,,,
5,dělati,,v.ipf.,1,"to do, to make",,,делать,,,robić,dělat,,,,,,,,machen,,,,,
6,grad,(město),m.,2,"city, town",,,город,,,gród,,,,,град,grad,,,,,,,,Grad jest velik.
7,grad,(led),m.,3,hail,,,град,,,grad,kroupy,,,,,,,,,,,,,
`

// SampleEntryCount is the number of entries SampleCSV normalizes to.
const SampleEntryCount = 6

// SetupTestConfig creates a config file pointing the cache at a directory under tmpDir
// and the dictionary source at sourceURL. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, sourceURL string) string {
	t.Helper()

	cacheDir := filepath.Join(tmpDir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0755))

	configContent := fmt.Sprintf(`dictionary:
  source_url: %s
  timeout: 5s
cache:
  backend: file
  directory: %s
  max_age: 24h
output:
  format: human
  color: false
`,
		sourceURL,
		cacheDir,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// DictionaryServer serves a dictionary export and counts the requests it receives.
type DictionaryServer struct {
	*httptest.Server
	requests atomic.Int32
}

// Requests returns how many times the export was downloaded.
func (s *DictionaryServer) Requests() int {
	return int(s.requests.Load())
}

// ExportURL returns the export URL of the server.
func (s *DictionaryServer) ExportURL() string {
	return s.Server.URL + "/export?format=csv"
}

// NewDictionaryServer starts a server replying with status and body to every request.
// The server is closed when the test finishes.
func NewDictionaryServer(t *testing.T, status int, body string) *DictionaryServer {
	t.Helper()

	server := &DictionaryServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.requests.Add(1)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// UnreachableURL returns a URL nothing listens on.
func UnreachableURL(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/export?format=csv"
	server.Close()
	return url
}
