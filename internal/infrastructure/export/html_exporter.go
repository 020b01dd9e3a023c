package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"wallet-graph-explorer/internal/domain/entity"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// Role colors matching the legend
const (
	colorSender   = "#FF6B6B"
	colorReceiver = "#66BB6A"
	colorMixed    = "#FFA726"
)

// HTMLExporter renders an interactive vis-network page with a per-node
// transaction table and CSV download.
type HTMLExporter struct {
	path   string
	logger *logger.Logger
}

// NewHTMLExporter creates a new HTML exporter writing to path
func NewHTMLExporter(path string, logger *logger.Logger) domain_service.GraphExporter {
	return &HTMLExporter{
		path:   path,
		logger: logger.WithComponent("html-exporter"),
	}
}

type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Shape string `json:"shape"`
	Size  int    `json:"size"`
	Color struct {
		Background string `json:"background"`
		Border     string `json:"border"`
	} `json:"color"`
}

type visEdge struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Arrows string `json:"arrows"`
	Title  string `json:"title"`
	Value  string `json:"value"`
	Date   string `json:"date"`
	TxID   string `json:"tx_id"`
}

// Export renders the page
func (e *HTMLExporter) Export(graph *entity.Graph) error {
	nodes := make([]visNode, 0, len(graph.Nodes))
	for _, w := range graph.Wallets() {
		n := visNode{
			ID:    w.Address,
			Label: w.ShortAddress(),
			Title: fmt.Sprintf("Balance: %s BTC", w.NetBalance.StringFixed(8)),
			Shape: "dot",
			Size:  15,
		}
		n.Color.Border = "#333"
		switch w.Role {
		case entity.RoleSender:
			n.Color.Background = colorSender
		case entity.RoleReceiver:
			n.Color.Background = colorReceiver
		default:
			n.Color.Background = colorMixed
		}
		nodes = append(nodes, n)
	}

	edges := make([]visEdge, 0, len(graph.Edges))
	for _, edge := range graph.EdgeList() {
		date := edge.Timestamp.Format("2006-01-02")
		edges = append(edges, visEdge{
			ID:     fmt.Sprintf("%s_%s_%s", edge.From, edge.To, edge.TxHash),
			From:   edge.From,
			To:     edge.To,
			Arrows: "to",
			Title:  fmt.Sprintf("TxID: %s\n%s BTC\nDate: %s", shortHash(edge.TxHash), edge.Value.String(), date),
			Value:  edge.Value.String(),
			Date:   date,
			TxID:   edge.TxHash,
		})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer file.Close()

	data := struct {
		Nodes template.JS
		Edges template.JS
	}{
		Nodes: template.JS(nodesJSON),
		Edges: template.JS(edgesJSON),
	}
	if err := pageTemplate.Execute(file, data); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	e.logger.Info("Graph exported as interactive HTML",
		zap.String("path", e.path),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)))
	return nil
}

func shortHash(hash string) string {
	if len(hash) <= 9 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-3:]
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Blockchain Visual</title>
  <script src="https://unpkg.com/vis-network@9.1.2/dist/vis-network.min.js"></script>
  <link href="https://unpkg.com/vis-network@9.1.2/styles/vis-network.min.css" rel="stylesheet" />
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    .dot { display: inline-block; width: 12px; height: 12px; border-radius: 50%; margin-right: 8px; }
    #layout { display: flex; flex-direction: row; gap: 20px; }
    #left-panel { flex: 2; }
    #right-panel { flex: 1; max-height: 80vh; overflow-y: auto; }
    #network { width: 100%; height: 60vh; border: 1px solid lightgray; }
    #infoTable { width: 100%; border-collapse: collapse; margin-top: 10px; }
    #infoTable th, #infoTable td { border: 1px solid #ccc; padding: 6px; font-size: 14px; }
    #infoTable th { background-color: #f0f0f0; }
    button { margin-top: 10px; padding: 10px; background-color: #4CAF50; color: white; border: none; border-radius: 5px; cursor: pointer; }
    button:hover { background-color: #45a049; }
  </style>
</head>
<body>
  <h2>Blockchain Transaction Graph</h2>
  <div id="graphInfo" style="margin-bottom: 15px; font-weight: bold;"></div>
  <div style="border: 1px solid #ccc; padding: 8px; margin-bottom: 10px; background-color: #f9f9f9;">
    <strong>Nodes:</strong>
    <span class="dot" style="background-color:#FF6B6B;"></span> Sender
    <span class="dot" style="background-color:#66BB6A;"></span> Receiver
    <span class="dot" style="background-color:#FFA726;"></span> Mixed
  </div>
  <div id="layout">
    <div id="left-panel"><div id="network"></div></div>
    <div id="right-panel">
      <h3>Transactions of selected node</h3>
      <table id="infoTable" style="display:none;">
        <thead>
          <tr><th>Tx ID</th><th>Sender</th><th>Receiver</th><th>Value</th><th>Date</th></tr>
        </thead>
        <tbody id="tableBody"></tbody>
      </table>
      <button id="resetButton">Reset selection</button>
      <button id="exportCSVButton">Export CSV</button>
    </div>
  </div>
  <script>
    const allNodes = new vis.DataSet({{.Nodes}});
    const allEdges = new vis.DataSet({{.Edges}});
    const edges = new vis.DataSet(allEdges.get());

    const network = new vis.Network(document.getElementById("network"), {
      nodes: allNodes,
      edges: edges
    }, {
      layout: { improvedLayout: true },
      interaction: { tooltipDelay: 200 },
      physics: { stabilization: true }
    });

    document.getElementById("graphInfo").innerText =
      "Nodes: " + allNodes.length + ", Transactions: " + allEdges.length;

    function short(s) {
      return s.length > 9 ? s.slice(0, 6) + "..." + s.slice(-3) : s;
    }

    network.on("selectNode", function(params) {
      const selected = params.nodes[0];
      const connected = allEdges.get().filter(e => e.from === selected || e.to === selected)
        .map(e => {
          e.color = { color: e.from === selected ? "#d33" : "#2e7d32" };
          e.width = 2;
          return e;
        });
      edges.clear();
      edges.add(connected);

      const tableBody = document.getElementById("tableBody");
      tableBody.innerHTML = "";
      connected.forEach(e => {
        const row = document.createElement("tr");
        row.innerHTML = "<td>" + short(e.tx_id) + "</td><td>" + short(e.from) +
          "</td><td>" + short(e.to) + "</td><td>" + e.value + " BTC</td><td>" + e.date + "</td>";
        tableBody.appendChild(row);
      });
      document.getElementById("infoTable").style.display = "table";
    });

    document.getElementById("resetButton").addEventListener("click", function() {
      edges.clear();
      edges.add(allEdges.get());
      document.getElementById("infoTable").style.display = "none";
      document.getElementById("tableBody").innerHTML = "";
    });

    document.getElementById("exportCSVButton").addEventListener("click", function() {
      const rows = document.querySelectorAll("#infoTable tbody tr");
      if (rows.length === 0) {
        alert("No transactions selected.");
        return;
      }
      let csv = "tx_id,sender,receiver,value,date\n";
      rows.forEach(r => {
        csv += Array.from(r.querySelectorAll("td")).map(td => '"' + td.textContent.trim() + '"').join(",") + "\n";
      });
      const link = document.createElement("a");
      link.href = URL.createObjectURL(new Blob([csv], { type: "text/csv;charset=utf-8;" }));
      link.download = "transactions.csv";
      link.click();
    });
  </script>
</body>
</html>
`))
