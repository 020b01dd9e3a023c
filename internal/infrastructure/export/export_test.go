package export

import (
	"encoding/csv"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportHash = strings.Repeat("a", 64)

func demoGraph() *entity.Graph {
	g := entity.NewGraph()
	sender := g.UpsertWallet("1SenderSenderSenderSenderSend")
	sender.MarkSender()
	sender.NetBalance = decimal.RequireFromString("-5.0")
	receiver := g.UpsertWallet("1ReceiverReceiverReceiverRece")
	receiver.MarkReceiver()
	receiver.NetBalance = decimal.RequireFromString("5.0")

	g.MergeEdge(sender.Address, receiver.Address,
		decimal.RequireFromString("5.0"), exportHash,
		time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC))
	return g
}

func TestGraphMLExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.graphml")
	require.NoError(t, NewGraphMLExporter(path, logger.NewNopLogger()).Export(demoGraph()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc graphmlDoc
	require.NoError(t, xml.Unmarshal(raw, &doc))

	assert.Equal(t, "directed", doc.Graph.EdgeDefault)
	require.Len(t, doc.Graph.Nodes, 2)
	require.Len(t, doc.Graph.Edges, 1)

	edge := doc.Graph.Edges[0]
	assert.Equal(t, "1SenderSenderSenderSenderSend", edge.Source)
	assert.Equal(t, "1ReceiverReceiverReceiverRece", edge.Target)

	values := map[string]string{}
	for _, d := range edge.Data {
		values[d.Key] = d.Value
	}
	assert.Equal(t, exportHash, values["tx_id"])
	assert.Equal(t, "5.0", values["value"])
	assert.Equal(t, "2024-01-10", values["date"])
}

func TestCSVExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, NewCSVExporter(path, logger.NewNopLogger()).Export(demoGraph()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"tx_hash", "sender", "receiver", "value", "timestamp"}, rows[0])
	assert.Equal(t, exportHash, rows[1][0])
	assert.Equal(t, "2024-01-10 09:30:00", rows[1][4])
}

func TestHTMLExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.html")
	require.NoError(t, NewHTMLExporter(path, logger.NewNopLogger()).Export(demoGraph()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(raw)

	assert.Contains(t, page, "vis-network")
	assert.Contains(t, page, "1Sende...Send")
	assert.Contains(t, page, colorSender)
	assert.Contains(t, page, colorReceiver)
}

func TestDOTExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.gv")
	require.NoError(t, NewDOTExporter(path, logger.NewNopLogger()).Export(demoGraph()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "1SenderSenderSenderSenderSend")
	assert.Contains(t, out, "5.0 BTC")
}
