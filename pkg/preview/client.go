package preview

import (
	"html"
	"strings"
)

// indexPage renders the preview shell: an empty mount point plus the thin
// client that mirrors the server-side host tree.
func indexPage(appName string) string {
	return strings.Replace(clientPage, "{{APP_NAME}}", html.EscapeString(appName), -1)
}

// clientPage is the thin preview client. It replays text and attribute
// mutations against data-loom-id targets and swaps in the snapshot whenever
// a frame contains structural mutations. Browser events on annotated
// elements are forwarded to the server for dispatch.
const clientPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{APP_NAME}} · loom preview</title>
</head>
<body>
<div id="loom-root"></div>
<script>
(function () {
  var root = document.getElementById("loom-root");
  var proto = location.protocol === "https:" ? "wss" : "ws";
  var ws = new WebSocket(proto + "://" + location.host + "/ws");

  function byId(id) {
    return root.querySelector('[data-loom-id="' + id + '"]');
  }

  function applyMutation(m) {
    var el = byId(m.node);
    if (!el) return false;
    switch (m.op) {
      case "SetAttr":
        el.setAttribute(m.name, m.value || "");
        return true;
      case "RemoveAttr":
        el.removeAttribute(m.name);
        return true;
      default:
        // Text nodes and structure are not addressable by id; the
        // snapshot in the same frame covers them.
        return false;
    }
  }

  function applyPatch(frame) {
    var fallback = false;
    (frame.mutations || []).forEach(function (m) {
      if (m.op !== "SetAttr" && m.op !== "RemoveAttr") {
        fallback = true;
        return;
      }
      if (!applyMutation(m)) fallback = true;
    });
    if (fallback && frame.html) {
      root.innerHTML = frame.html;
    }
  }

  ws.onmessage = function (msg) {
    var frame = JSON.parse(msg.data);
    if (frame.type === "init") {
      root.innerHTML = frame.html;
    } else if (frame.type === "patch") {
      applyPatch(frame);
    } else if (frame.type === "error") {
      console.error("loom preview:", frame.message);
    }
  };

  function forward(ev) {
    var el = ev.target && ev.target.closest
      ? ev.target.closest("[data-loom-id]")
      : null;
    if (!el) return;
    var value = "";
    if (ev.target && typeof ev.target.value === "string") {
      value = ev.target.value;
    }
    ws.send(JSON.stringify({
      node: parseInt(el.getAttribute("data-loom-id"), 10),
      event: ev.type,
      value: value
    }));
  }

  ["click", "input", "change", "submit"].forEach(function (type) {
    root.addEventListener(type, forward);
  });
})();
</script>
</body>
</html>
`
