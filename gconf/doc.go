/*
Package gconf provides a toolset for managing an extension configuration.

Each extension stores its configuration as a singleton under the
"_c:<extension name>" key. The initial value is loaded from the genesis file
("conf" section, keyed by the extension name) and can later be changed with
an UpdateConfigurationHandler, which only the current configuration owner
can use.
*/
package gconf
