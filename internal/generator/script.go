package generator

import "github.com/mcncl/jsonviewer/internal/elapsed"

// script drives a page in the browser: the same click handlers the viewer
// binds on a Surface, delegated from the renderer element, and the elapsed
// label updater. It works on the markup as mounted, so a page rendered
// collapsed starts with its placeholders already in place.
const script = `
(function () {
  var root = document.getElementById("` + RendererID + `");
  var contentSelector = "ul.json-dict, ol.json-array";

  function sibling(el, selector) {
    for (var s = el.parentNode.firstElementChild; s; s = s.nextElementSibling) {
      if (s !== el && s.matches(selector)) {
        return s;
      }
    }
    return null;
  }

  function toggle(link) {
    var list = sibling(link, contentSelector);
    if (!list) {
      return;
    }
    if (link.classList.contains("collapsed")) {
      link.classList.remove("collapsed");
      list.style.display = "";
      var placeholder;
      while ((placeholder = sibling(list, "a.json-placeholder"))) {
        placeholder.remove();
      }
      return;
    }
    link.classList.add("collapsed");
    list.style.display = "none";
    var count = 0;
    for (var li = list.firstElementChild; li; li = li.nextElementSibling) {
      if (li.tagName === "LI") {
        count++;
      }
    }
    var a = document.createElement("a");
    a.setAttribute("href", "");
    a.className = "json-placeholder";
    a.textContent = count + (count > 1 ? " items" : " item");
    list.after(a);
  }

  function showMore(link) {
    var more = sibling(link, ".json-more");
    if (!more) {
      return;
    }
    var hidden = more.style.display === "none";
    more.style.display = hidden ? "" : "none";
    link.textContent = hidden ? "Hide" : "Show more...";
  }

  if (root) {
    root.addEventListener("click", function (ev) {
      var el = ev.target.closest("a.json-toggle, a.json-placeholder, .json-show-more");
      if (!el || !root.contains(el)) {
        return;
      }
      ev.preventDefault();
      if (el.matches(".json-show-more")) {
        showMore(el);
        return;
      }
      ev.stopPropagation();
      if (el.matches("a.json-placeholder")) {
        el = sibling(el, "a.json-toggle");
        if (!el) {
          return;
        }
      }
      toggle(el);
    });
  }

  function since(seconds) {
    if (seconds < 60) {
      return Math.round(seconds) + " seconds since loaded...";
    } else if (seconds < 3600) {
      return Math.round(seconds / 60) + " minutes since loaded...";
    } else if (seconds < 86400) {
      return Math.round(seconds / 3600) + " hours since loaded...";
    }
    return Math.round(seconds / 86400) + " days since loaded...";
  }

  function update(el) {
    if (!el.hasAttribute("` + elapsed.Attribute + `")) {
      return;
    }
    var first = parseInt(el.getAttribute("` + elapsed.Attribute + `"), 10);
    if (isNaN(first)) {
      first = Date.now();
      el.setAttribute("` + elapsed.Attribute + `", String(first));
    }
    var seconds = (Date.now() - first) / 1000;
    el.textContent = since(seconds);
    var delay = 3000;
    if (seconds > 60) {
      delay = 10000;
    }
    if (seconds > 360) {
      delay = 100000;
    }
    setTimeout(function () { update(el); }, delay + Math.floor(Math.random() * 1000));
  }

  document.querySelectorAll("[` + elapsed.Attribute + `]").forEach(update);
})();
`
