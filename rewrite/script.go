package rewrite

// InjectionScript returns the one-shot function executed inside the host
// page's context, taking the replacement map as its only argument. It mirrors
// ReplaceInHTML: document-order traversal of text nodes, escaped-literal
// global case-insensitive matching, a node rewritten only when some entry
// matched. Arguments cross the boundary by serialization; nothing is shared.
func InjectionScript() string {
	return `(replacements) => {
	const escapeLiteral = (w) => w.replace(/[.*+?^${}()|[\]\\]/g, '\\$&');
	const matchers = Object.entries(replacements).map(([word, replacement]) => ({
		pattern: new RegExp(escapeLiteral(word), 'gi'),
		replacement,
	}));
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT, null);
	let node;
	while ((node = walker.nextNode())) {
		const parent = node.parentNode && node.parentNode.nodeName;
		if (parent === 'SCRIPT' || parent === 'STYLE') continue;
		let text = node.textContent;
		let changed = false;
		for (const m of matchers) {
			if (m.pattern.test(text)) {
				m.pattern.lastIndex = 0;
				text = text.replace(m.pattern, m.replacement);
				changed = true;
			}
		}
		if (changed) node.textContent = text;
	}
}`
}
