// Package assets provides the CSS and HTML template used to build slide
// decks. Assets can be loaded from embedded files or a custom directory.
//
// Every asset has a Kind (Style or Template) and a bare name. Embedded and
// Dir both implement Source; Resolver layers an optional Dir over Embedded,
// so a deck can override only the document template or only the base style.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # base slide style (default: slides.css)
//	└── templates/
//	    └── {name}.html          # document shell (default: document.html)
//
// # Security
//
// Names may not contain separators or dots. Dir resolves symlinks and refuses
// any file outside its root.
package assets
